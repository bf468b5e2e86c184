package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/clipforge/clipforge-agent/internal/progress"
)

type Tray struct {
	logger *slog.Logger

	statusItem *systray.MenuItem
	clipsItem  *systray.MenuItem

	mu sync.Mutex

	onQuit func()
}

type TrayConfig struct {
	Logger *slog.Logger
	OnQuit func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		logger: cfg.Logger,
		onQuit: cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Clipforge")
	systray.SetTooltip("Clipforge Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.clipsItem = systray.AddMenuItem("Clips: 0/0", "Clips created in the current run")
	t.clipsItem.Disable()

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Clipforge Agent")

	go func() {
		for range quitItem.ClickedCh {
			t.logger.Info("quit requested from tray")
			if t.onQuit != nil {
				t.onQuit()
			}
			systray.Quit()
			return
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

// Publish implements progress.Sink so the tray can be wired directly
// into the run's progress updates.
func (t *Tray) Publish(snap progress.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.statusItem == nil || t.clipsItem == nil {
		return
	}

	t.statusItem.SetTitle("Status: " + phaseLabel(snap))
	t.clipsItem.SetTitle(fmt.Sprintf("Clips: %d/%d", snap.CurrentClip, snap.TotalClips))
}

func phaseLabel(snap progress.Snapshot) string {
	switch snap.Phase {
	case progress.PhaseDownloading:
		return "Downloading"
	case progress.PhaseProcessing:
		return fmt.Sprintf("Processing (%d%%)", snap.Percent)
	case progress.PhaseComplete:
		return "Done"
	case progress.PhaseError:
		return "Error"
	default:
		return "Idle"
	}
}

func (t *Tray) Quit() {
	systray.Quit()
}
