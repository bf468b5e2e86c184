// Package progress holds the current status of a processing run as a single
// atomic snapshot. Writers replace the whole record at every milestone, so a
// polling reader never observes a mix of two milestones.
package progress

import "sync"

// Phase identifies a high-level step in the run lifecycle.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseDownloading Phase = "downloading"
	PhaseProcessing  Phase = "processing"
	PhaseComplete    Phase = "complete"
	PhaseError       Phase = "error"
)

// Snapshot is one full progress record.
type Snapshot struct {
	Phase       Phase  `json:"status"`
	Message     string `json:"message"`
	Percent     int    `json:"progress"`
	TotalClips  int    `json:"total_clips"`
	CurrentClip int    `json:"current_clip"`
	Error       string `json:"error,omitempty"`
}

// Sink receives progress snapshots. The batch runner publishes through this
// interface so it stays decoupled from any particular transport.
type Sink interface {
	Publish(s Snapshot)
}

// Tracker is the canonical snapshot holder. The zero value is not usable;
// construct with NewTracker.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Phase: PhaseIdle}}
}

// Publish replaces the current snapshot.
func (t *Tracker) Publish(s Snapshot) {
	t.mu.Lock()
	t.snap = s
	t.mu.Unlock()
}

// Set builds a snapshot from its fields and publishes it.
func (t *Tracker) Set(phase Phase, message string, percent, totalClips, currentClip int) {
	t.Publish(Snapshot{
		Phase:       phase,
		Message:     message,
		Percent:     percent,
		TotalClips:  totalClips,
		CurrentClip: currentClip,
	})
}

// Fail records a terminal error state. The message stays visible until the
// next Reset.
func (t *Tracker) Fail(message string) {
	t.Publish(Snapshot{Phase: PhaseError, Message: message, Error: message})
}

// Reset returns the tracker to the idle state at the start of a run.
func (t *Tracker) Reset() {
	t.Publish(Snapshot{Phase: PhaseIdle})
}

// Snapshot returns a copy of the current record.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(s Snapshot)

func (f SinkFunc) Publish(s Snapshot) { f(s) }
