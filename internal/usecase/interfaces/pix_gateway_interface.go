package interfaces

import (
	"context"

	"pix_checkout/internal/domain/entities"
)

// IPixGateway abstracts the upstream PIX provider (SyncPay V2).
//
// CreateTransaction owns retry/backoff and the single provider fallback;
// callers see one normalized result or one terminal error.
type IPixGateway interface {
	Authenticate(ctx context.Context) (accessToken string, err error)
	CreateTransaction(ctx context.Context, req entities.PaymentRequest) (entities.TransactionResult, error)
	GetStatus(ctx context.Context, transactionID string) (entities.TransactionResult, error)
}

// IFallbackGateway is the secondary, differently-shaped provider used once
// the primary path is exhausted.
type IFallbackGateway interface {
	Name() string
	CreateFallback(ctx context.Context, req entities.PaymentRequest) (entities.TransactionResult, error)
}
