// Package scheduler runs the daily maintenance job: the quarterly baseline
// sweep on the first day of each quarter and the inactivity penalty sweep
// every day. It fires at midnight and once at startup to catch missed days.
package scheduler

import (
	"context"
	"time"

	"padel-tracker/internal/domain"
	"padel-tracker/internal/service"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Scheduler struct {
	ledger  *service.LedgerService
	penalty *service.PenaltyService
	logger  zerolog.Logger
	stop    chan struct{}
	done    chan struct{}
}

func New(ledger *service.LedgerService, penalty *service.PenaltyService, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		ledger:  ledger,
		penalty: penalty,
		logger:  logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go s.run()
}

func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)

	// Startup run covers restarts that skipped a midnight.
	s.runOnce(time.Now())

	for {
		timer := time.NewTimer(untilNextMidnight(time.Now()))
		select {
		case <-s.stop:
			timer.Stop()
			return
		case now := <-timer.C:
			s.runOnce(now)
		}
	}
}

func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}

func (s *Scheduler) runOnce(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	if domain.IsFirstDay(now) {
		s.logger.Info().Time("now", now).Msg("first day of quarter, sweeping baselines")
		g.Go(func() error {
			return s.ledger.EnsureAllBaselines(gCtx, now)
		})
	}

	g.Go(func() error {
		n, err := s.penalty.ApplyInactivityPenalties(gCtx, now)
		if err != nil {
			return err
		}
		if n > 0 {
			s.logger.Info().Int("penalized", n).Msg("inactivity sweep done")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("daily job failed")
	}
}
