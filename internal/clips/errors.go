package clips

import (
	"errors"
	"fmt"

	"github.com/clipforge/clipforge-agent/internal/segment"
)

// ErrEmptyResult indicates a run produced no artifacts: either the plan was
// empty or every window failed to encode. Callers decide whether that is a
// terminal failure or a success with an empty result.
var ErrEmptyResult = errors.New("no clips were created")

// ErrRunInProgress is returned when a new run is requested while another is
// still executing. Run state is a single in-flight record.
var ErrRunInProgress = errors.New("a run is already in progress")

// EncodeError reports the failure of a single window. It never aborts the
// batch; the window is skipped and the run continues.
type EncodeError struct {
	Window segment.Window
	Reason string
	Err    error
}

func (e *EncodeError) Error() string {
	msg := fmt.Sprintf("clip %d [%.1fs-%.1fs]: %s", e.Window.Index, e.Window.Start, e.Window.End, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EncodeError) Unwrap() error { return e.Err }
