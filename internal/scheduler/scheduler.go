// Package scheduler drives time-based round transitions on a cron schedule
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/ArowuTest/poolgame-backend/internal/services"
)

// Scheduler closes due rounds and optionally settles closed rounds that
// have a draw
type Scheduler struct {
	rounds      services.RoundService
	settlements services.SettlementService
	autoSettle  bool
	timeout     time.Duration
	logger      log.FieldLogger

	cron *cron.Cron
	mu   sync.Mutex // serialises ticks
}

// New creates a Scheduler running on spec, a standard five field cron
// expression or a descriptor such as "@every 1m"
func New(spec string, rounds services.RoundService, settlements services.SettlementService, autoSettle bool, logger log.FieldLogger) (*Scheduler, error) {
	s := &Scheduler{
		rounds:      rounds,
		settlements: settlements,
		autoSettle:  autoSettle,
		timeout:     time.Minute,
		logger:      logger,
		cron:        cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, err
	}
	return s, nil
}

// Start runs the schedule in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the schedule and waits for a running tick
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.RunOnce(ctx)
}

// RunOnce closes due rounds and, with auto settle, settles pending ones
func (s *Scheduler) RunOnce(ctx context.Context) (closed, settled int) {
	if !s.mu.TryLock() {
		s.logger.Debug("previous tick still running")
		return 0, 0
	}
	defer s.mu.Unlock()

	closed, err := s.rounds.CloseDue(ctx)
	if err != nil {
		s.logger.WithError(err).Error("closing due rounds failed")
	}

	if s.autoSettle {
		settled, err = s.settlements.SettlePending(ctx)
		if err != nil {
			s.logger.WithError(err).Error("settling pending rounds failed")
		}
	}

	if closed > 0 || settled > 0 {
		s.logger.WithFields(log.Fields{"closed": closed, "settled": settled}).Info("scheduler tick")
	}
	return closed, settled
}
