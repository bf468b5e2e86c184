package progress

import (
	"sync"
	"testing"
)

func TestTracker_InitialStateIdle(t *testing.T) {
	tr := NewTracker()
	snap := tr.Snapshot()
	if snap.Phase != PhaseIdle {
		t.Errorf("initial phase = %q, want %q", snap.Phase, PhaseIdle)
	}
	if snap.Percent != 0 {
		t.Errorf("initial percent = %d, want 0", snap.Percent)
	}
}

func TestTracker_SetOverwritesWholeRecord(t *testing.T) {
	tr := NewTracker()
	tr.Set(PhaseProcessing, "Generating clip 3/10...", 55, 10, 3)
	tr.Set(PhaseComplete, "done", 100, 10, 10)

	snap := tr.Snapshot()
	if snap.Phase != PhaseComplete || snap.Percent != 100 || snap.CurrentClip != 10 {
		t.Errorf("snapshot = %+v, want fully overwritten complete record", snap)
	}
	if snap.Error != "" {
		t.Errorf("error carried across milestones: %q", snap.Error)
	}
}

func TestTracker_FailThenReset(t *testing.T) {
	tr := NewTracker()
	tr.Fail("download failed")

	snap := tr.Snapshot()
	if snap.Phase != PhaseError || snap.Error != "download failed" {
		t.Errorf("after Fail snapshot = %+v", snap)
	}

	tr.Reset()
	snap = tr.Snapshot()
	if snap.Phase != PhaseIdle || snap.Error != "" {
		t.Errorf("after Reset snapshot = %+v, want idle with no error", snap)
	}
}

func TestTracker_ConcurrentReadersAndWriter(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i <= 100; i++ {
			tr.Set(PhaseProcessing, "working", i, 100, i)
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				snap := tr.Snapshot()
				if snap.Percent != snap.CurrentClip && snap.Phase == PhaseProcessing {
					t.Errorf("torn snapshot observed: %+v", snap)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestSinkFunc(t *testing.T) {
	var got Snapshot
	sink := SinkFunc(func(s Snapshot) { got = s })
	sink.Publish(Snapshot{Phase: PhaseDownloading, Percent: 20})
	if got.Phase != PhaseDownloading || got.Percent != 20 {
		t.Errorf("SinkFunc did not forward snapshot: %+v", got)
	}
}
