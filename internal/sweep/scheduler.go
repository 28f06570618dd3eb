package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler triggers the sweep once shortly after startup (catch-up for
// missed runs) and then daily at a fixed UTC hour.
type Scheduler struct {
	sweeper      *Sweeper
	checkHourUTC int
	startupDelay time.Duration
	stopChan     chan struct{}
}

func NewScheduler(sweeper *Sweeper, checkHourUTC int, startupDelay time.Duration) *Scheduler {
	return &Scheduler{
		sweeper:      sweeper,
		checkHourUTC: checkHourUTC,
		startupDelay: startupDelay,
		stopChan:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go s.run()
	log.Info().Int("check_hour_utc", s.checkHourUTC).Msg("sweep scheduler started")
}

func (s *Scheduler) Stop() {
	close(s.stopChan)
	log.Info().Msg("sweep scheduler stopped")
}

func (s *Scheduler) run() {
	startup := time.NewTimer(s.startupDelay)
	select {
	case <-s.stopChan:
		startup.Stop()
		return
	case <-startup.C:
		s.runOnce()
	}

	timer := time.NewTimer(s.untilNextRun())
	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.runOnce()
			timer.Reset(s.untilNextRun())
		}
	}
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, _, err := s.sweeper.Run(ctx); err != nil {
		log.Error().Err(err).Msg("sweep run failed")
	}
}

func (s *Scheduler) untilNextRun() time.Duration {
	now := time.Now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.checkHourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
