package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/usecase/interfaces"
)

const (
	providerSyncPayV2 = "syncpay_v2"

	maxResponseBytes = 1 << 20
)

var (
	ErrMissingCredentials = errors.New("SYNCPAY_CLIENT_ID and SYNCPAY_CLIENT_SECRET are required")
	errMissingAccessToken = errors.New("auth response has no access_token")
)

// SyncPayGateway talks to the SyncPay V2 partner API: bearer-token auth,
// cash-in creation with retry/backoff and a single fallback, and status
// checks.
type SyncPayGateway struct {
	cfg          SyncPayConfig
	httpClient   *http.Client
	statusClient *http.Client
	fallback     interfaces.IFallbackGateway
	sleep        func(ctx context.Context, d time.Duration) error
}

var _ interfaces.IPixGateway = (*SyncPayGateway)(nil)

// NewSyncPayGateway builds the gateway; fallback may be nil.
func NewSyncPayGateway(cfg SyncPayConfig, fallback interfaces.IFallbackGateway) (*SyncPayGateway, error) {
	cfg = cfg.withDefaults()
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	return &SyncPayGateway{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		statusClient: &http.Client{Timeout: cfg.StatusTimeout},
		fallback:     fallback,
		sleep:        sleepContext,
	}, nil
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

// Authenticate exchanges client credentials for a bearer token.
func (g *SyncPayGateway) Authenticate(ctx context.Context) (string, error) {
	creds := map[string]string{
		"client_id":     g.cfg.ClientID,
		"client_secret": g.cfg.ClientSecret,
	}
	if g.cfg.ExtraKey != "" {
		creds[g.cfg.ExtraKey] = g.cfg.ExtraValue
	}
	body, err := json.Marshal(creds)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.AuthURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &entities.TransientNetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[pix][gateway] auth rejected status=%d", resp.StatusCode)
		return "", &entities.AuthError{StatusCode: resp.StatusCode}
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil || out.AccessToken == "" {
		log.Printf("[pix][gateway] auth response without token status=%d", resp.StatusCode)
		return "", &entities.GatewayError{StatusCode: resp.StatusCode, ProviderDetails: "access_token missing", Err: errMissingAccessToken}
	}
	return out.AccessToken, nil
}

// CreateTransaction creates a PIX cash-in.
//
// Transport failures and 5xx answers are retried up to MaxAttempts with a
// 2^n * BackoffBase wait after failed attempt n. 400 and 401 are terminal.
// Once retries are exhausted, or on any other 4xx, the fallback is called
// exactly once.
//
// A response without payment code is returned as is together with
// entities.ErrIncompleteResponse, carrying the id when the provider sent one.
func (g *SyncPayGateway) CreateTransaction(ctx context.Context, req entities.PaymentRequest) (entities.TransactionResult, error) {
	body, err := json.Marshal(toSyncPayPayload(req))
	if err != nil {
		return entities.TransactionResult{}, err
	}

	g.probeHealth(ctx)

	var (
		token   string
		lastErr error
	)
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := g.backoff(attempt - 1)
			log.Printf("[pix][gateway] retrying create attempt=%d delay=%s last_err=%v", attempt, delay, lastErr)
			if err := g.sleep(ctx, delay); err != nil {
				return entities.TransactionResult{}, err
			}
		}

		if token == "" {
			token, err = g.Authenticate(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return entities.TransactionResult{}, ctx.Err()
				}
				if isRetryable(err) {
					lastErr = err
					continue
				}
				return entities.TransactionResult{}, err
			}
		}

		result, err := g.postTransaction(ctx, token, body)
		switch {
		case err == nil:
			log.Printf("[pix][gateway] transaction created id=%s status=%s attempt=%d", result.ID, result.Status, attempt)
			return result, nil
		case errors.Is(err, entities.ErrIncompleteResponse):
			log.Printf("[pix][gateway] transaction created without payment code id=%q attempt=%d", result.ID, attempt)
			return result, err
		case ctx.Err() != nil:
			return entities.TransactionResult{}, ctx.Err()
		case isTerminal(err):
			log.Printf("[pix][gateway] create rejected attempt=%d err=%v", attempt, err)
			return entities.TransactionResult{}, err
		case isRetryable(err):
			lastErr = err
			continue
		}

		lastErr = err
		break
	}

	return g.useFallback(ctx, req, lastErr)
}

func (g *SyncPayGateway) postTransaction(ctx context.Context, token string, body []byte) (entities.TransactionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.GatewayURL, bytes.NewReader(body))
	if err != nil {
		return entities.TransactionResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return entities.TransactionResult{}, &entities.TransientNetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return entities.TransactionResult{}, &entities.TransientNetworkError{Err: err}
	}
	return classifyCreateResponse(resp.StatusCode, raw, providerSyncPayV2)
}

// classifyCreateResponse is shared by every SyncPay version.
func classifyCreateResponse(status int, raw []byte, provider string) (entities.TransactionResult, error) {
	switch {
	case status == http.StatusUnauthorized:
		return entities.TransactionResult{}, &entities.AuthError{StatusCode: status}
	case status < 200 || status >= 300:
		return entities.TransactionResult{}, &entities.GatewayError{StatusCode: status, ProviderDetails: providerDetails(raw)}
	}

	result, err := NormalizeTransaction(raw, provider)
	if errors.Is(err, errMalformedResponse) {
		return entities.TransactionResult{}, &entities.GatewayError{StatusCode: status, ProviderDetails: providerDetails(raw), Err: err}
	}
	return result, err
}

func (g *SyncPayGateway) useFallback(ctx context.Context, req entities.PaymentRequest, lastErr error) (entities.TransactionResult, error) {
	exhausted := asGatewayError(lastErr)
	if g.fallback == nil {
		return entities.TransactionResult{}, exhausted
	}

	log.Printf("[pix][gateway] primary exhausted, using fallback=%s last_err=%v", g.fallback.Name(), lastErr)
	result, err := g.fallback.CreateFallback(ctx, req)
	switch {
	case err == nil:
		log.Printf("[pix][gateway] fallback=%s created id=%s", g.fallback.Name(), result.ID)
		return result, nil
	case errors.Is(err, entities.ErrIncompleteResponse) && result.ID != "":
		return result, err
	}

	log.Printf("[pix][gateway] fallback=%s failed err=%v", g.fallback.Name(), err)
	return entities.TransactionResult{}, exhausted
}

// GetStatus never fails on a non-2xx answer: it means the transaction is
// not available yet and is reported as pending.
func (g *SyncPayGateway) GetStatus(ctx context.Context, transactionID string) (entities.TransactionResult, error) {
	pending := entities.TransactionResult{ID: transactionID, Status: entities.TransactionStatusPending, Provider: providerSyncPayV2}

	endpoint := g.cfg.StatusURL + "/" + url.PathEscape(transactionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return entities.TransactionResult{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(g.cfg.StatusClientID, g.cfg.StatusClientSecret)

	resp, err := g.statusClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return entities.TransactionResult{}, ctx.Err()
		}
		return entities.TransactionResult{}, &entities.TransientNetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[pix][gateway] status not available id=%s status=%d", transactionID, resp.StatusCode)
		return pending, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return entities.TransactionResult{}, &entities.TransientNetworkError{Err: err}
	}

	result, err := NormalizeTransaction(raw, providerSyncPayV2)
	switch {
	case errors.Is(err, errMalformedResponse):
		log.Printf("[pix][gateway] status body unreadable id=%s", transactionID)
		return pending, nil
	case errors.Is(err, entities.ErrIncompleteResponse):
		if result.Status != entities.TransactionStatusFailed {
			result.Status = entities.TransactionStatusPending
		}
	case err != nil:
		return entities.TransactionResult{}, err
	}

	if result.ID == "" {
		result.ID = transactionID
	}
	if result.HasPaymentData() && result.Status != entities.TransactionStatusFailed {
		result.Status = entities.TransactionStatusCompleted
	}
	return result, nil
}

// probeHealth is a best-effort reachability check; its outcome never blocks
// the create call.
func (g *SyncPayGateway) probeHealth(ctx context.Context) {
	if g.cfg.HealthURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, defaultHealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.HealthURL, nil)
	if err != nil {
		return
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Printf("[pix][gateway] health probe failed err=%v", err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("[pix][gateway] health probe status=%d", resp.StatusCode)
	}
}

func (g *SyncPayGateway) backoff(failedAttempts int) time.Duration {
	return g.cfg.BackoffBase * time.Duration(1<<failedAttempts)
}

func isRetryable(err error) bool {
	var (
		netErr *entities.TransientNetworkError
		gwErr  *entities.GatewayError
	)
	if errors.As(err, &netErr) {
		return true
	}
	return errors.As(err, &gwErr) && gwErr.Retryable()
}

// isTerminal marks answers that no retry or fallback can fix.
func isTerminal(err error) bool {
	var (
		authErr *entities.AuthError
		gwErr   *entities.GatewayError
	)
	if errors.As(err, &authErr) {
		return true
	}
	if errors.As(err, &gwErr) {
		return gwErr.StatusCode == http.StatusBadRequest || errors.Is(err, errMalformedResponse)
	}
	return false
}

func asGatewayError(err error) error {
	var gwErr *entities.GatewayError
	if errors.As(err, &gwErr) {
		return gwErr
	}
	if err == nil {
		err = errors.New("no attempt was made")
	}
	return &entities.GatewayError{Err: err}
}

// providerDetails keeps a short excerpt of the provider body for logs and
// error responses.
func providerDetails(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 512 {
		s = s[:512]
	}
	return s
}
