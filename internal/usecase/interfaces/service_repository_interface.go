package interfaces

import (
	"context"

	"pix_checkout/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// IServiceRepository abstracts DynamoDB persistence for catalog services.
type IServiceRepository interface {
	Create(ctx context.Context, s entities.Service) (entities.Service, error)
	GetByID(ctx context.Context, id string) (entities.Service, error)
	List(ctx context.Context) ([]entities.Service, error)
	UpdatePriceByID(ctx context.Context, id string, newPrice decimal.Decimal) (entities.Service, error)
	SetActiveByID(ctx context.Context, id string, active bool) (entities.Service, error)
}
