package decks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// IntervalSource returns the current automatic sync period.
type IntervalSource func() (time.Duration, error)

// Scheduler starts automatic rounds on an interval.
type Scheduler struct {
	coordinator *Coordinator
	clock       Clock
	interval    time.Duration
	source      IntervalSource
	onStart     bool
	logger      *zap.Logger
}

// NewScheduler creates a scheduler. A non-positive interval disables the timer.
func NewScheduler(coordinator *Coordinator, clock Clock, interval time.Duration, onStart bool, logger *zap.Logger) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		coordinator: coordinator,
		clock:       clock,
		interval:    interval,
		onStart:     onStart,
		logger:      logger,
	}
}

// WatchInterval makes the scheduler re-read its interval after every tick.
// The ticker is reset when the interval changes. A non-positive value stops
// the timer until restart.
func (s *Scheduler) WatchInterval(source IntervalSource) *Scheduler {
	s.source = source
	return s
}

// Run triggers automatic rounds until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	if s.onStart {
		s.tick(ctx)
	}

	if s.interval <= 0 {
		s.logger.Info("Automatic sync disabled")
		<-ctx.Done()
		return
	}

	ticker := s.clock.NewTicker(s.interval)
	defer func() { ticker.Stop() }()

	s.logger.Info("Automatic sync scheduled", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.tick(ctx)
		}

		interval, changed := s.reload()
		if !changed {
			continue
		}
		ticker.Stop()
		if interval <= 0 {
			s.logger.Info("Automatic sync disabled")
			<-ctx.Done()
			return
		}
		ticker = s.clock.NewTicker(interval)
		s.logger.Info("Automatic sync rescheduled", zap.Duration("interval", interval))
	}
}

// reload reads the interval source and reports whether the interval changed.
func (s *Scheduler) reload() (time.Duration, bool) {
	if s.source == nil {
		return s.interval, false
	}
	interval, err := s.source()
	if err != nil {
		s.logger.Warn("Keeping sync interval, configuration unreadable",
			zap.Duration("interval", s.interval),
			zap.Error(err),
		)
		return s.interval, false
	}
	if interval == s.interval {
		return interval, false
	}
	s.interval = interval
	return interval, true
}

func (s *Scheduler) tick(ctx context.Context) {
	round, err := s.coordinator.StartAutomatic(ctx)
	if err != nil {
		s.logger.Error("Automatic sync not started", zap.Error(err))
		return
	}
	if round == nil {
		return
	}
	s.logger.Debug("Automatic sync dispatched", zap.String("round_id", round.ID))
}
