package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGCWorker reclaims value-log space on a fixed interval. Badger never
// runs this on its own; without the loop the value log grows unbounded.
type BadgerGCWorker struct {
	log      *slog.Logger
	db       *badger.DB
	interval time.Duration
}

func NewBadgerGCWorker(log *slog.Logger, db *badger.DB, interval time.Duration) *BadgerGCWorker {
	return &BadgerGCWorker{log: log, db: db, interval: interval}
}

func (w *BadgerGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping badger GC")
			return nil
		case <-ticker.C:
			// One GC call rewrites at most one value log file, loop until
			// badger reports nothing left to collect.
			for {
				if err := w.db.RunValueLogGC(0.5); err != nil {
					w.log.Debug("Badger GC pass finished", "reason", err)
					break
				}
				w.log.Info("Badger GC reclaimed a value log file")
			}
		}
	}
}
