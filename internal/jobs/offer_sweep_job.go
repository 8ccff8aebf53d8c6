// Package jobs provides scheduled background tasks built on
// github.com/robfig/cron/v3.
//
// OfferSweepJob is the durability net for the dispatch coordinator's
// in-process timers: offers whose acceptance window passed while no timer
// was armed (for example after a restart) are finalized as expired. The
// sweep never reopens a rider search; that stays an explicit retry action.
package jobs

import (
	"context"
	"log/slog"

	"snapeats/internal/core/ports"
	"snapeats/internal/pkg/clock"

	"github.com/robfig/cron/v3"
)

// OfferSweepJob finalizes stale pending dispatch offers.
// Runs every second, matching the acceptance window's one-second granularity.
type OfferSweepJob struct {
	uowFactory ports.UnitOfWorkFactory
	clock      clock.Clock
	cron       *cron.Cron
	logger     *slog.Logger
}

// NewOfferSweepJob creates a job that expires stale pending offers.
func NewOfferSweepJob(uowFactory ports.UnitOfWorkFactory, clk clock.Clock, logger *slog.Logger) *OfferSweepJob {
	return &OfferSweepJob{
		uowFactory: uowFactory,
		clock:      clk,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("component", "offer_sweep_job"),
	}
}

// Start begins the sweep job to run every second.
func (j *OfferSweepJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", func() {
		ctx := context.Background()
		if sweepErr := j.sweep(ctx); sweepErr != nil {
			j.logger.ErrorContext(ctx, "Offer sweep failed", "error", sweepErr)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Offer sweep job started (running every second)")
	return nil
}

// Stop stops the sweep job.
func (j *OfferSweepJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Offer sweep job stopped")
}

func (j *OfferSweepJob) sweep(ctx context.Context) error {
	uow := j.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	offers := uow.OfferRepository()

	stale, err := offers.GetPendingExpiredBefore(ctx, j.clock.Now())
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	for _, pending := range stale {
		if err = pending.Expire(); err != nil {
			return err
		}
		if err = offers.Update(ctx, pending); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	// These orders sit in ready_for_rider with no open window; the
	// restaurant's retry action reopens the search.
	j.logger.WarnContext(ctx, "Expired stale dispatch offers, orders await explicit retry",
		"count", len(stale))
	return nil
}
