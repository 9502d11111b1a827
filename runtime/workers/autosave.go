package workers

import (
	"context"
	"log/slog"
	"time"

	"chatbois/contract"
)

var _ contract.Worker = (*AutosaveWorker)(nil)

// Snapshotter is the slice of the engine the autosave worker needs.
type Snapshotter interface {
	Flush() error
}

// AutosaveWorker writes a directory snapshot at a fixed cadence, on top of
// the per-mutation snapshots the engine already takes. It exists so a server
// that crashed between a mutation and its snapshot loses at most one interval.
type AutosaveWorker struct {
	engine   Snapshotter
	interval time.Duration
	log      *slog.Logger
}

func NewAutosaveWorker(engine Snapshotter, interval time.Duration, log *slog.Logger) *AutosaveWorker {
	return &AutosaveWorker{engine: engine, interval: interval, log: log}
}

func (w *AutosaveWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping autosave worker")
			return nil
		case <-ticker.C:
			if err := w.engine.Flush(); err != nil {
				w.log.Error("Autosave failed", "error", err)
			}
		}
	}
}
