package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/clock"
)

// Snapshotter persists the full ledger state tagged with a height.
type Snapshotter interface {
	SaveSnapshot(path string, height uint64) error
}

type SnapshotWorker struct {
	store    Snapshotter
	clock    clock.Clock
	path     string
	interval time.Duration

	lastHeight uint64
	saved      bool
}

func NewSnapshotWorker(store Snapshotter, clk clock.Clock, path string, interval time.Duration) *SnapshotWorker {
	return &SnapshotWorker{
		store:    store,
		clock:    clk,
		path:     path,
		interval: interval,
	}
}

// Start writes a snapshot every interval and a final one when ctx ends.
func (w *SnapshotWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.WithField("path", w.path).Info("Snapshot worker started")

	for {
		select {
		case <-ctx.Done():
			w.Snapshot(context.WithoutCancel(ctx))
			logrus.Info("Snapshot worker stopped")
			return
		case <-ticker.C:
			w.Snapshot(ctx)
		}
	}
}

// Snapshot writes the current state. It reports whether a file was written.
func (w *SnapshotWorker) Snapshot(ctx context.Context) bool {
	height, err := w.clock.Height(ctx)
	if err != nil {
		logrus.Errorf("Failed to read height for snapshot: %v", err)
		return false
	}

	if err := w.store.SaveSnapshot(w.path, height); err != nil {
		logrus.WithFields(logrus.Fields{
			"path":   w.path,
			"height": height,
		}).Errorf("Failed to save snapshot: %v", err)
		return false
	}

	if !w.saved || height != w.lastHeight {
		logrus.WithFields(logrus.Fields{
			"path":   w.path,
			"height": height,
		}).Info("Snapshot saved")
	}
	w.lastHeight = height
	w.saved = true
	return true
}
