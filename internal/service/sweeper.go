package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper periodically reclaims expired holds.  A hold can outlive its
// nominal duration by at most one interval.
type Sweeper struct {
	holds    *HoldManager
	interval time.Duration
}

// NewSweeper returns a sweeper running every interval (DefaultSweepInterval
// when interval is not positive).
func NewSweeper(holds *HoldManager, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{holds: holds, interval: interval}
}

// Interval returns the sweep period.
func (s *Sweeper) Interval() time.Duration { return s.interval }

// SweepOnce runs a single pass and returns the number of holds reclaimed.
func (s *Sweeper) SweepOnce() int {
	reclaimed := s.holds.ExpireStale(s.holds.now())
	if len(reclaimed) > 0 {
		s.holds.log.WithField("expired", len(reclaimed)).Info("sweep: expired holds reclaimed")
	}
	return len(reclaimed)
}

// Run sweeps until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	s.holds.log.WithFields(logrus.Fields{
		"interval": s.interval.String(), "hold_duration": s.holds.duration.String(),
	}).Info("sweep: started")
	for {
		select {
		case <-ctx.Done():
			s.holds.log.Info("sweep: stopped")
			return nil
		case <-t.C:
			s.SweepOnce()
		}
	}
}
