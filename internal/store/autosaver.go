package store

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cutroom/cutroom-agent/internal/timeline"
)

// Autosaver periodically snapshots the active project so a crash loses at
// most one interval of edits.
type Autosaver struct {
	store    *Store
	session  *timeline.Session
	interval time.Duration
	logger   *slog.Logger
	running  atomic.Bool
	paused   atomic.Bool
}

func NewAutosaver(store *Store, session *timeline.Session, interval time.Duration, logger *slog.Logger) *Autosaver {
	return &Autosaver{
		store:    store,
		session:  session,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the autosave loop until ctx is cancelled. A final save is
// attempted on shutdown.
func (a *Autosaver) Start(ctx context.Context) {
	if a.running.Swap(true) {
		return
	}

	a.logger.Info("autosaver started", "interval", a.interval.String())

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("autosaver stopping")
			a.saveOnce(context.Background())
			a.running.Store(false)
			return
		case <-ticker.C:
			if !a.paused.Load() {
				a.saveOnce(ctx)
			}
		}
	}
}

// Pause suspends periodic saves, e.g. while an export reads the snapshot
// files directly.
func (a *Autosaver) Pause() {
	a.paused.Store(true)
	a.logger.Info("autosaver paused")
}

func (a *Autosaver) Resume() {
	a.paused.Store(false)
	a.logger.Info("autosaver resumed")
}

func (a *Autosaver) IsPaused() bool {
	return a.paused.Load()
}

func (a *Autosaver) IsRunning() bool {
	return a.running.Load()
}

// SaveNow forces an immediate snapshot of the active project.
func (a *Autosaver) SaveNow(ctx context.Context) error {
	p := a.session.Project()
	if p == nil {
		return nil
	}
	return a.store.Save(ctx, p)
}

func (a *Autosaver) saveOnce(ctx context.Context) {
	if err := a.SaveNow(ctx); err != nil {
		a.logger.Error("autosave failed", "error", err)
	}
}
