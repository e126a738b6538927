// Package scheduler produces blocks on a local height source.
package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/clock"
)

type Scheduler struct {
	producer clock.Producer
	interval time.Duration
}

func NewScheduler(producer clock.Producer, interval time.Duration) *Scheduler {
	return &Scheduler{
		producer: producer,
		interval: interval,
	}
}

// Start advances the height by one block every interval until ctx ends.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	height, err := s.producer.Advance(ctx, 1)
	if err != nil {
		logrus.Errorf("Failed to produce block: %v", err)
		return
	}
	logrus.WithField("height", height).Debug("Block produced")
}
