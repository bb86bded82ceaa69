package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SnapshotPersister writes the current tracker state to the store. The
// trigger label identifies what asked for the write.
type SnapshotPersister interface {
	PersistSnapshot(ctx context.Context, trigger string) error
}

// SessionChecker reports whether anyone is logged in.
type SessionChecker interface {
	HasActiveSession(ctx context.Context) bool
}

// IntervalSource yields the user-configured autosave period.
type IntervalSource interface {
	AutoSaveInterval(ctx context.Context) time.Duration
}

// AutosaveWorker periodically persists the attendance snapshot while a
// session is active. The ticker is re-armed each cycle so a changed
// autoSaveInterval setting takes effect on the next tick without a restart.
type AutosaveWorker struct {
	persister SnapshotPersister
	sessions  SessionChecker
	intervals IntervalSource
	log       zerolog.Logger
}

// NewAutosaveWorker creates a new AutosaveWorker.
func NewAutosaveWorker(persister SnapshotPersister, sessions SessionChecker, intervals IntervalSource, log zerolog.Logger) *AutosaveWorker {
	return &AutosaveWorker{
		persister: persister,
		sessions:  sessions,
		intervals: intervals,
		log:       log.With().Str("component", "autosave_worker").Logger(),
	}
}

// Start begins the autosave loop. Call in a goroutine; it exits when ctx is
// cancelled, writing one final snapshot so shutdown never loses state.
func (w *AutosaveWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	timer := time.NewTimer(w.intervals.AutoSaveInterval(ctx))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.finalSave()
			w.log.Info().Msg("Worker stopped")
			return
		case <-timer.C:
			w.tick(ctx)
			timer.Reset(w.intervals.AutoSaveInterval(ctx))
		}
	}
}

func (w *AutosaveWorker) tick(ctx context.Context) {
	// Autosave only runs while someone is logged in, matching the original
	// tracker's save-on-activity behavior.
	if !w.sessions.HasActiveSession(ctx) {
		return
	}
	if err := w.persister.PersistSnapshot(ctx, "autosave"); err != nil {
		w.log.Error().Err(err).Msg("Autosave failed")
		return
	}
	w.log.Debug().Msg("Autosaved snapshot")
}

// finalSave runs after ctx is cancelled, so it gets its own deadline.
func (w *AutosaveWorker) finalSave() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.persister.PersistSnapshot(ctx, "shutdown"); err != nil {
		w.log.Error().Err(err).Msg("Final snapshot failed")
	}
}
