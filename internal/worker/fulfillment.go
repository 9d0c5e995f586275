// Package worker runs the durable fulfillment queue: claim due jobs, grant
// access and send the purchase email, retry with capped exponential backoff,
// and mark the order failed once attempts are exhausted.
package worker

import (
	"context"
	"time"

	"prepkit-store/internal/model"
	"prepkit-store/internal/repository"
	"prepkit-store/internal/service"

	"github.com/rs/zerolog/log"
)

type Fulfiller struct {
	Jobs        repository.FulfillmentJobRepository
	Orders      repository.OrderRepository
	Service     service.FulfillmentService
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
	Lease       time.Duration
}

func (w *Fulfiller) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		if err := w.DispatchOnce(ctx); err != nil {
			log.Error().Err(err).Msg("fulfillment dispatch failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Fulfiller) DispatchOnce(ctx context.Context) error {
	jobs, err := w.Jobs.LockDue(ctx, w.BatchSize, w.Lease)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		w.process(ctx, job)
	}
	return nil
}

func (w *Fulfiller) process(ctx context.Context, job *model.FulfillmentJob) {
	_, err := w.Service.Fulfill(ctx, job.Email, job.PlanName)
	if err == nil {
		if err := w.Jobs.MarkSent(ctx, job.ID); err != nil {
			log.Error().Err(err).Uint("job_id", job.ID).Msg("mark job sent failed")
		}
		if err := w.Orders.SetStatus(ctx, job.OrderID, model.OrderEmailSent, ""); err != nil {
			log.Error().Err(err).Str("order_id", job.OrderID).Msg("update order status failed")
		}
		log.Info().
			Str("order_id", job.OrderID).
			Str("email", job.Email).
			Msg("fulfillment complete")
		return
	}

	attempts := job.Attempts + 1
	if attempts >= w.MaxAttempts {
		log.Error().
			Err(err).
			Str("order_id", job.OrderID).
			Int("attempts", attempts).
			Msg("fulfillment failed permanently")
		if err2 := w.Jobs.MarkFailed(ctx, job, err); err2 != nil {
			log.Error().Err(err2).Uint("job_id", job.ID).Msg("mark job failed errored")
		}
		if err2 := w.Orders.SetStatus(ctx, job.OrderID, model.OrderFailed, err.Error()); err2 != nil {
			log.Error().Err(err2).Str("order_id", job.OrderID).Msg("update order status failed")
		}
		return
	}

	delay := retryDelay(attempts)
	log.Warn().
		Err(err).
		Str("order_id", job.OrderID).
		Int("attempts", attempts).
		Dur("retry_in", delay).
		Msg("fulfillment attempt failed, rescheduling")
	if err2 := w.Jobs.Reschedule(ctx, job, err, delay); err2 != nil {
		log.Error().Err(err2).Uint("job_id", job.ID).Msg("reschedule job failed")
	}
}

func retryDelay(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	if attempts > 5 {
		attempts = 5
	}
	delay := time.Duration(1<<attempts) * time.Second
	if delay > time.Minute {
		delay = time.Minute
	}
	return delay
}
