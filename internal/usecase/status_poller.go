package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/usecase/interfaces"
)

const (
	DefaultPollInterval    = 5 * time.Second
	DefaultPollMaxAttempts = 25
)

// StatusPoller resolves a transaction created without payment data by
// checking its status on a fixed interval, a bounded number of times.
type StatusPoller struct {
	gateway     interfaces.IPixGateway
	interval    time.Duration
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
}

func NewStatusPoller(gateway interfaces.IPixGateway, interval time.Duration, maxAttempts int) *StatusPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultPollMaxAttempts
	}
	return &StatusPoller{
		gateway:     gateway,
		interval:    interval,
		maxAttempts: maxAttempts,
		sleep:       sleepContext,
		now:         time.Now,
	}
}

// Poll checks immediately, then every interval, until the transaction has
// both payment fields, the provider reports it failed, attempts run out
// (entities.ErrTimedOut) or ctx is done. Status-check errors consume an
// attempt and are otherwise ignored.
//
// observe, when non-nil, receives the poll progress after every check.
func (p *StatusPoller) Poll(ctx context.Context, transactionID string, observe func(entities.PollState)) (entities.TransactionResult, error) {
	last := entities.TransactionResult{ID: transactionID, Status: entities.TransactionStatusPending}

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := p.sleep(ctx, p.interval); err != nil {
				return last, err
			}
		}

		res, err := p.gateway.GetStatus(ctx, transactionID)
		if observe != nil {
			observe(entities.PollState{
				TransactionID: transactionID,
				Attempt:       attempt,
				MaxAttempts:   p.maxAttempts,
				LastPolledAt:  p.now(),
			})
		}

		if err != nil {
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			log.Printf("[pix][poller] status check failed id=%s attempt=%d/%d err=%v", transactionID, attempt, p.maxAttempts, err)
			continue
		}

		last = res
		switch {
		case res.Status == entities.TransactionStatusFailed:
			log.Printf("[pix][poller] transaction failed id=%s attempt=%d", transactionID, attempt)
			return res, entities.ErrTransactionFailed
		case res.HasPaymentData():
			res.Status = entities.TransactionStatusCompleted
			log.Printf("[pix][poller] transaction completed id=%s attempt=%d", transactionID, attempt)
			return res, nil
		}
	}

	log.Printf("[pix][poller] gave up id=%s attempts=%d", transactionID, p.maxAttempts)
	return last, entities.ErrTimedOut
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isCanceled reports whether err comes from the attempt context being done.
func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
