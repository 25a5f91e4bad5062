package usecase

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCheckoutNotFound = errors.New("checkout attempt not found")
	ErrInvalidSessionID = errors.New("session id is required")
)

// finishedRetention is how long a terminal attempt stays readable through
// Snapshot before it is evicted.
const finishedRetention = entities.PixCodeValidity

// IPixCheckoutUseCase drives one PIX payment attempt per session from
// validation to a payable code (or a terminal error).
type IPixCheckoutUseCase interface {
	Pay(ctx context.Context, sessionID string, req entities.PaymentRequest) (entities.CheckoutAttempt, error)
	Start(ctx context.Context, sessionID string, req entities.PaymentRequest) (entities.CheckoutAttempt, error)
	Snapshot(sessionID string) (entities.CheckoutAttempt, error)
	Abandon(sessionID string) (entities.CheckoutAttempt, error)
}

// CheckoutConfig tunes the checkout flow.
//
// Supported env vars:
//   - PIX_MIN_AMOUNT (default 1.49)
//   - PIX_POLL_INTERVAL (default 5s)
//   - PIX_POLL_MAX_ATTEMPTS (default 25)
type CheckoutConfig struct {
	MinAmount       decimal.Decimal
	PollInterval    time.Duration
	PollMaxAttempts int
}

func NewCheckoutConfigFromEnv() CheckoutConfig {
	cfg := CheckoutConfig{
		MinAmount:       DefaultMinimumAmount,
		PollInterval:    DefaultPollInterval,
		PollMaxAttempts: DefaultPollMaxAttempts,
	}
	if v := strings.TrimSpace(os.Getenv("PIX_MIN_AMOUNT")); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && d.IsPositive() {
			cfg.MinAmount = d
		}
	}
	if d, err := time.ParseDuration(os.Getenv("PIX_POLL_INTERVAL")); err == nil && d > 0 {
		cfg.PollInterval = d
	}
	if n, err := strconv.Atoi(os.Getenv("PIX_POLL_MAX_ATTEMPTS")); err == nil && n > 0 {
		cfg.PollMaxAttempts = n
	}
	return cfg
}

// PixCheckoutUseCase is the transaction orchestrator. Attempts live only in
// process memory, keyed by session.
type PixCheckoutUseCase struct {
	gateway   interfaces.IPixGateway
	limiter   interfaces.IRateLimiter
	validator IPaymentValidator
	poller    *StatusPoller
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*checkoutRun
}

// checkoutRun is the live attempt of a session. attempt and waiters are
// guarded by PixCheckoutUseCase.mu; done is closed once attempt is terminal.
// waiters counts the calls that joined instead of starting a new attempt.
type checkoutRun struct {
	attempt entities.CheckoutAttempt
	waiters int
	done    chan struct{}
	cancel  context.CancelFunc
}

var _ IPixCheckoutUseCase = (*PixCheckoutUseCase)(nil)

// NewPixCheckoutUseCase wires the orchestrator; limiter may be nil to
// disable rate limiting.
func NewPixCheckoutUseCase(gateway interfaces.IPixGateway, limiter interfaces.IRateLimiter, cfg CheckoutConfig) *PixCheckoutUseCase {
	return &PixCheckoutUseCase{
		gateway:   gateway,
		limiter:   limiter,
		validator: NewPaymentValidator(cfg.MinAmount),
		poller:    NewStatusPoller(gateway, cfg.PollInterval, cfg.PollMaxAttempts),
		now:       time.Now,
		sessions:  map[string]*checkoutRun{},
	}
}

// Pay runs the whole attempt synchronously. A call for a session that
// already has an attempt in flight waits for it and returns its outcome
// instead of creating a second provider transaction.
func (u *PixCheckoutUseCase) Pay(ctx context.Context, sessionID string, req entities.PaymentRequest) (entities.CheckoutAttempt, error) {
	run, runCtx, leader, err := u.begin(ctx, sessionID)
	if err != nil {
		return entities.CheckoutAttempt{SessionID: sessionID, State: entities.FlowStateFailed, Err: err}, err
	}
	if !leader {
		log.Printf("[pix][usecase] joining in-flight attempt session=%s attempt=%s", sessionID, run.attempt.ID)
		return u.wait(ctx, run)
	}

	if u.validate(run, &req) {
		u.process(runCtx, run, req)
	}
	snap := u.snapshot(run)
	return snap, snap.Err
}

// Start rate-limits and validates synchronously, then creates and polls in
// the background. The returned snapshot is read right after validation.
// A call for a session with an attempt in flight returns that attempt.
func (u *PixCheckoutUseCase) Start(ctx context.Context, sessionID string, req entities.PaymentRequest) (entities.CheckoutAttempt, error) {
	run, runCtx, leader, err := u.begin(context.WithoutCancel(ctx), sessionID)
	if err != nil {
		return entities.CheckoutAttempt{SessionID: sessionID, State: entities.FlowStateFailed, Err: err}, err
	}
	if !leader {
		return u.snapshot(run), nil
	}

	if !u.validate(run, &req) {
		snap := u.snapshot(run)
		return snap, snap.Err
	}
	go u.process(runCtx, run, req)
	return u.snapshot(run), nil
}

func (u *PixCheckoutUseCase) Snapshot(sessionID string) (entities.CheckoutAttempt, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	run, ok := u.sessions[sessionID]
	if !ok {
		return entities.CheckoutAttempt{}, ErrCheckoutNotFound
	}
	return run.attempt, nil
}

// Abandon stops further retry and poll scheduling of the in-flight attempt.
// The attempt ends as failed with entities.ErrAttemptAbandoned once the
// current step returns.
func (u *PixCheckoutUseCase) Abandon(sessionID string) (entities.CheckoutAttempt, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	run, ok := u.sessions[sessionID]
	if !ok {
		return entities.CheckoutAttempt{}, ErrCheckoutNotFound
	}
	if run.attempt.State.InFlight() {
		log.Printf("[pix][usecase] abandon requested session=%s attempt=%s state=%s", sessionID, run.attempt.ID, run.attempt.State)
		run.cancel()
	}
	return run.attempt, nil
}

// begin either joins the in-flight attempt of the session or, when the rate
// limiter allows it, registers a new one in the validating state.
func (u *PixCheckoutUseCase) begin(parent context.Context, sessionID string) (*checkoutRun, context.Context, bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil, false, ErrInvalidSessionID
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	now := u.now()
	u.evictFinished(now)

	if run, ok := u.sessions[sessionID]; ok && run.attempt.State.InFlight() {
		run.waiters++
		return run, nil, false, nil
	}

	if u.limiter != nil && !u.limiter.TryAcquire(sessionID) {
		retryAfter := u.limiter.RetryAfter(sessionID)
		log.Printf("[pix][usecase] rate limited session=%s retry_after=%s", sessionID, retryAfter)
		return nil, nil, false, &entities.RateLimitedError{RetryAfter: retryAfter}
	}

	ctx, cancel := context.WithCancel(parent)
	run := &checkoutRun{
		attempt: entities.CheckoutAttempt{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			State:     entities.FlowStateIdle,
			StartedAt: now,
			UpdatedAt: now,
		},
		done:   make(chan struct{}),
		cancel: cancel,
	}
	u.sessions[sessionID] = run
	u.transitionLocked(run, entities.FlowStateValidating)
	log.Printf("[pix][usecase] attempt started session=%s attempt=%s", sessionID, run.attempt.ID)
	return run, ctx, true, nil
}

// validate normalizes req in place. It reports false after moving the run
// to failed.
func (u *PixCheckoutUseCase) validate(run *checkoutRun, req *entities.PaymentRequest) bool {
	req.Normalize()
	if err := u.validator.Validate(*req); err != nil {
		log.Printf("[pix][usecase] validation failed attempt=%s err=%v", run.attempt.ID, err)
		u.finish(run, entities.FlowStateFailed, nil, err)
		return false
	}
	return true
}

// process runs creation and, when needed, polling. It always leaves the run
// in a terminal state.
func (u *PixCheckoutUseCase) process(ctx context.Context, run *checkoutRun, req entities.PaymentRequest) {
	u.transition(run, entities.FlowStateCreating)

	res, err := u.gateway.CreateTransaction(ctx, req)
	switch {
	case ctx.Err() != nil:
		u.finish(run, entities.FlowStateFailed, nil, entities.ErrAttemptAbandoned)
		return
	case err == nil && res.HasPaymentData():
		res.Status = entities.TransactionStatusCompleted
		u.finish(run, entities.FlowStateComplete, &res, nil)
		return
	case err != nil && !errors.Is(err, entities.ErrIncompleteResponse):
		log.Printf("[pix][usecase] create failed attempt=%s err=%v", run.attempt.ID, err)
		u.finish(run, entities.FlowStateFailed, nil, err)
		return
	case strings.TrimSpace(res.ID) == "":
		log.Printf("[pix][usecase] create returned no transaction id attempt=%s", run.attempt.ID)
		u.finish(run, entities.FlowStateFailed, &res, entities.ErrMissingTransaction)
		return
	}

	u.awaitPoll(run, res)
	u.transition(run, entities.FlowStatePolling)

	polled, err := u.poller.Poll(ctx, res.ID, func(ps entities.PollState) {
		u.mu.Lock()
		defer u.mu.Unlock()
		run.attempt.Poll = &ps
		run.attempt.UpdatedAt = u.now()
	})
	switch {
	case err == nil:
		u.finish(run, entities.FlowStateComplete, &polled, nil)
	case isCanceled(err):
		u.finish(run, entities.FlowStateFailed, &polled, entities.ErrAttemptAbandoned)
	case errors.Is(err, entities.ErrTimedOut):
		u.finish(run, entities.FlowStateTimedOut, &polled, err)
	default:
		u.finish(run, entities.FlowStateFailed, &polled, err)
	}
}

func (u *PixCheckoutUseCase) awaitPoll(run *checkoutRun, res entities.TransactionResult) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.transitionLocked(run, entities.FlowStateAwaitingPoll) {
		return
	}
	run.attempt.Result = &res
	run.attempt.Poll = &entities.PollState{TransactionID: res.ID, MaxAttempts: u.poller.maxAttempts}
	log.Printf("[pix][usecase] awaiting poll attempt=%s transaction=%s", run.attempt.ID, res.ID)
}

func (u *PixCheckoutUseCase) transition(run *checkoutRun, to entities.FlowState) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.transitionLocked(run, to)
}

func (u *PixCheckoutUseCase) transitionLocked(run *checkoutRun, to entities.FlowState) bool {
	from := run.attempt.State
	if !from.CanTransition(to) {
		log.Printf("[pix][usecase] illegal transition attempt=%s from=%s to=%s", run.attempt.ID, from, to)
		return false
	}
	run.attempt.State = to
	run.attempt.UpdatedAt = u.now()
	return true
}

func (u *PixCheckoutUseCase) finish(run *checkoutRun, to entities.FlowState, res *entities.TransactionResult, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.transitionLocked(run, to) {
		return
	}
	if res != nil {
		run.attempt.Result = res
	}
	run.attempt.Err = err
	run.attempt.Poll = nil
	if to == entities.FlowStateComplete {
		completedAt := run.attempt.UpdatedAt
		run.attempt.CompletedAt = &completedAt
	}
	run.cancel()
	close(run.done)
	log.Printf("[pix][usecase] attempt finished session=%s attempt=%s state=%s joined=%d err=%v", run.attempt.SessionID, run.attempt.ID, to, run.waiters, err)
}

func (u *PixCheckoutUseCase) wait(ctx context.Context, run *checkoutRun) (entities.CheckoutAttempt, error) {
	select {
	case <-run.done:
		snap := u.snapshot(run)
		return snap, snap.Err
	case <-ctx.Done():
		return u.snapshot(run), ctx.Err()
	}
}

func (u *PixCheckoutUseCase) snapshot(run *checkoutRun) entities.CheckoutAttempt {
	u.mu.Lock()
	defer u.mu.Unlock()
	return run.attempt
}

// evictFinished drops terminal attempts untouched for finishedRetention.
// Caller holds u.mu.
func (u *PixCheckoutUseCase) evictFinished(now time.Time) {
	for id, run := range u.sessions {
		if run.attempt.State.Terminal() && now.Sub(run.attempt.UpdatedAt) > finishedRetention {
			delete(u.sessions, id)
		}
	}
}
