package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pawtrol/pawtrol-api/internal/store"
)

// OfferSweeper periodically marks overdue open offers as expired.
type OfferSweeper struct {
	offers     store.OfferStore
	interval   time.Duration
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewOfferSweeper creates a sweeper that runs at the given interval.
func NewOfferSweeper(offers store.OfferStore, interval time.Duration, logger *slog.Logger) *OfferSweeper {
	if offers == nil {
		panic("offers cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &OfferSweeper{
		offers:     offers,
		interval:   interval,
		ctx:        ctx,
		cancelFunc: cancel,
		logger:     logger.With(slog.String("component", "offer_sweeper")),
	}
}

// Start begins the periodic sweep in a background goroutine.
func (s *OfferSweeper) Start() {
	s.wg.Add(1)
	go s.run()
	s.logger.Info("offer sweeper started", slog.Duration("interval", s.interval))
}

// Stop cancels the sweep loop and waits for the in-flight pass to finish.
func (s *OfferSweeper) Stop() {
	s.cancelFunc()
	s.wg.Wait()
	s.logger.Info("offer sweeper stopped")
}

func (s *OfferSweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(s.ctx)
		}
	}
}

// SweepOnce runs a single expiry pass. Exposed so startup and tests can
// trigger a sweep deterministically.
func (s *OfferSweeper) SweepOnce(ctx context.Context) {
	expired, err := s.offers.ExpireOverdue(ctx, time.Now())
	if err != nil {
		s.logger.Error("offer sweep failed", slog.String("error", err.Error()))
		return
	}
	if expired > 0 {
		s.logger.Info("expired overdue offers", slog.Int("count", expired))
	}
}
