package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/usecase/interfaces"
)

const providerSyncPayV1 = "syncpay_v1"

// SyncPayV1Fallback posts the same charge to the legacy V1 endpoint using
// HTTP Basic credentials and the V1 document shape.
type SyncPayV1Fallback struct {
	cfg        SyncPayConfig
	httpClient *http.Client
}

var _ interfaces.IFallbackGateway = (*SyncPayV1Fallback)(nil)

func NewSyncPayV1Fallback(cfg SyncPayConfig) *SyncPayV1Fallback {
	cfg = cfg.withDefaults()
	return &SyncPayV1Fallback{cfg: cfg, httpClient: &http.Client{Timeout: cfg.RequestTimeout}}
}

func (f *SyncPayV1Fallback) Name() string { return providerSyncPayV1 }

func (f *SyncPayV1Fallback) CreateFallback(ctx context.Context, req entities.PaymentRequest) (entities.TransactionResult, error) {
	payload := toSyncPayPayload(req)
	payload.Customer.Document = &syncPayDocument{Number: payload.Customer.CPF, Type: "cpf"}

	body, err := json.Marshal(payload)
	if err != nil {
		return entities.TransactionResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.FallbackURL, bytes.NewReader(body))
	if err != nil {
		return entities.TransactionResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(f.cfg.ClientID, f.cfg.ClientSecret)

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("[pix][fallback] v1 request failed err=%v", err)
		return entities.TransactionResult{}, &entities.TransientNetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return entities.TransactionResult{}, &entities.TransientNetworkError{Err: err}
	}
	log.Printf("[pix][fallback] v1 response status=%d", resp.StatusCode)
	return classifyCreateResponse(resp.StatusCode, raw, providerSyncPayV1)
}
