// Package segment computes the set of overlapping clip windows covering a
// media file. Planning is pure arithmetic; the same inputs always produce
// the same plan.
package segment

import (
	"errors"
	"fmt"
)

// ErrInvalidParams indicates the planning parameters cannot produce a
// forward-moving plan (overlap >= target length, or non-positive lengths).
var ErrInvalidParams = errors.New("invalid segmentation parameters")

// Params holds the timing parameters for a plan. All durations are seconds.
type Params struct {
	TargetLength float64 // length of every non-final window
	Overlap      float64 // overlap between consecutive windows
	MinLength    float64 // shortest acceptable final window
	MaxWindows   int     // safety bound on plan size
}

// Window is one contiguous time interval selected for extraction.
// Index is 1-based and contiguous across the plan.
type Window struct {
	Index    int     `json:"clip_number"`
	Start    float64 `json:"start_time"`
	End      float64 `json:"end_time"`
	Duration float64 `json:"duration"`
	Final    bool    `json:"is_final_clip"`
}

// Step returns the spacing between consecutive window start times.
func (p Params) Step() float64 {
	return p.TargetLength - p.Overlap
}

// Validate checks that the parameters describe a usable plan.
func (p Params) Validate() error {
	if p.TargetLength <= 0 {
		return fmt.Errorf("%w: target length %.2f must be positive", ErrInvalidParams, p.TargetLength)
	}
	if p.Overlap < 0 {
		return fmt.Errorf("%w: overlap %.2f must not be negative", ErrInvalidParams, p.Overlap)
	}
	if p.Step() <= 0 {
		return fmt.Errorf("%w: overlap %.2f must be smaller than target length %.2f", ErrInvalidParams, p.Overlap, p.TargetLength)
	}
	if p.MinLength < 0 {
		return fmt.Errorf("%w: min length %.2f must not be negative", ErrInvalidParams, p.MinLength)
	}
	if p.MaxWindows <= 0 {
		return fmt.Errorf("%w: max windows %d must be positive", ErrInvalidParams, p.MaxWindows)
	}
	return nil
}

// Plan computes every window of p.TargetLength seconds starting at multiples
// of the step, plus an optional shorter final window reaching the end of the
// source. A final window shorter than p.MinLength is dropped, not stretched;
// the coverage report depends on that policy.
func Plan(totalDuration float64, p Params) ([]Window, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var windows []Window
	step := p.Step()
	start := 0.0

	for start < totalDuration && len(windows) < p.MaxWindows {
		end := start + p.TargetLength

		if end > totalDuration {
			end = totalDuration
			if end-start >= p.MinLength {
				windows = append(windows, Window{
					Index:    len(windows) + 1,
					Start:    start,
					End:      end,
					Duration: end - start,
					Final:    true,
				})
			}
			break
		}

		windows = append(windows, Window{
			Index:    len(windows) + 1,
			Start:    start,
			End:      end,
			Duration: p.TargetLength,
		})
		start += step
	}

	return windows, nil
}

// Count returns the number of windows Plan would produce. Callers that need
// an expected-clip estimate use this rather than re-deriving it from the
// step arithmetic, so the estimate can never drift from the plan.
func Count(totalDuration float64, p Params) (int, error) {
	windows, err := Plan(totalDuration, p)
	if err != nil {
		return 0, err
	}
	return len(windows), nil
}
