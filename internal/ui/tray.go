package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/cutroom/cutroom-agent/internal/store"
	"github.com/cutroom/cutroom-agent/internal/timeline"
)

type Tray struct {
	session   *timeline.Session
	autosaver *store.Autosaver
	logger    *slog.Logger

	projectItem  *systray.MenuItem
	durationItem *systray.MenuItem
	pauseItem    *systray.MenuItem

	mu sync.Mutex

	onSaveNow func() error
	onQuit    func()
}

type TrayConfig struct {
	Session   *timeline.Session
	Autosaver *store.Autosaver
	Logger    *slog.Logger
	OnSaveNow func() error
	OnQuit    func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		session:   cfg.Session,
		autosaver: cfg.Autosaver,
		logger:    cfg.Logger,
		onSaveNow: cfg.OnSaveNow,
		onQuit:    cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Cutroom")
	systray.SetTooltip("Cutroom Agent")

	t.projectItem = systray.AddMenuItem("Project: none", "Active project")
	t.projectItem.Disable()

	t.durationItem = systray.AddMenuItem("Duration: 0:00", "Timeline duration")
	t.durationItem.Disable()

	systray.AddSeparator()

	saveItem := systray.AddMenuItem("Save Now", "Snapshot the active project")

	t.pauseItem = systray.AddMenuItem("Pause Autosave", "Suspend periodic saves")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Cutroom Agent")

	go func() {
		for {
			select {
			case <-saveItem.ClickedCh:
				t.handleSaveNow()
			case <-t.pauseItem.ClickedCh:
				t.togglePause()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) togglePause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autosaver == nil {
		return
	}

	if t.autosaver.IsPaused() {
		t.autosaver.Resume()
		t.pauseItem.SetTitle("Pause Autosave")
	} else {
		t.autosaver.Pause()
		t.pauseItem.SetTitle("Resume Autosave")
	}
}

func (t *Tray) handleSaveNow() {
	if t.onSaveNow != nil {
		if err := t.onSaveNow(); err != nil {
			t.logger.Error("tray save failed", "error", err)
		}
	}
}

// RefreshProject updates the project and duration menu entries from the
// current session state. Callers may tick before systray has finished
// initialising, so it is a no-op until onReady has built the menu.
func (t *Tray) RefreshProject() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.projectItem == nil || t.durationItem == nil {
		return
	}

	p := t.session.Project()
	if p == nil {
		t.projectItem.SetTitle("Project: none")
		t.durationItem.SetTitle("Duration: 0:00")
		return
	}

	t.projectItem.SetTitle("Project: " + p.Name)
	t.durationItem.SetTitle("Duration: " + formatDuration(p.Duration()))
}

func (t *Tray) Quit() {
	systray.Quit()
}

func formatDuration(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
