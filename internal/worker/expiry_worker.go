package worker

import (
	"context"
	"sync"
	"time"

	"github.com/chasfatacademy/exam-backend/internal/config"
	"github.com/chasfatacademy/exam-backend/internal/service"
	"github.com/rs/zerolog"
)

// ExpiryWorker periodically finalizes sessions whose deadline plus grace has
// passed without a submit. It is a safety net behind the lazy per-request
// enforcement, so disconnected clients still get scored.
type ExpiryWorker struct {
	sessionService *service.SessionService
	interval       time.Duration
	log            zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewExpiryWorker creates a new ExpiryWorker.
func NewExpiryWorker(cfg *config.Config, sessionService *service.SessionService, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		sessionService: sessionService,
		interval:       cfg.SweepInterval,
		log:            log.With().Str("component", "expiry_worker").Logger(),
	}
}

// Start launches the sweep loop in its own goroutine.
func (w *ExpiryWorker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.wg.Add(1)
	go w.run(ctx)

	w.log.Info().Dur("interval", w.interval).Msg("Expiry worker started")
}

// Stop signals the loop and waits for an in-flight sweep to finish.
func (w *ExpiryWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.log.Info().Msg("Expiry worker stopped")
}

func (w *ExpiryWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	expired, err := w.sessionService.ExpireOverdue(sweepCtx)
	if err != nil {
		w.log.Error().Err(err).Msg("Sweep failed")
		return
	}
	if expired > 0 {
		w.log.Info().Int("expired", expired).Msg("Overdue sessions finalized")
	}
}
