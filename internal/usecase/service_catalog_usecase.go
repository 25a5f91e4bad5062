package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrServiceNotFound     = errors.New("service not found")
	ErrServiceInactive     = errors.New("service is not available for purchase")
	ErrInvalidServiceID    = errors.New("invalid service id")
	ErrInvalidServiceTitle = errors.New("invalid service title")
	ErrInvalidServicePrice = errors.New("invalid service price")
)

// IServiceCatalogUseCase manages the purchasable services a PIX checkout can
// be started for.
type IServiceCatalogUseCase interface {
	Create(ctx context.Context, title string, price decimal.Decimal, tangible bool) (entities.Service, error)
	GetByID(ctx context.Context, id string) (entities.Service, error)
	List(ctx context.Context) ([]entities.Service, error)
	UpdatePrice(ctx context.Context, id string, newPrice decimal.Decimal) (entities.Service, error)
	Deactivate(ctx context.Context, id string) (entities.Service, error)
	PrepareCheckout(ctx context.Context, id string, req entities.PaymentRequest) (entities.PaymentRequest, error)
}

type ServiceCatalogUseCase struct {
	repo interfaces.IServiceRepository
}

var _ IServiceCatalogUseCase = (*ServiceCatalogUseCase)(nil)

func NewServiceCatalogUseCase(repo interfaces.IServiceRepository) *ServiceCatalogUseCase {
	return &ServiceCatalogUseCase{repo: repo}
}

func (u *ServiceCatalogUseCase) Create(ctx context.Context, title string, price decimal.Decimal, tangible bool) (entities.Service, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return entities.Service{}, ErrInvalidServiceTitle
	}
	if !price.IsPositive() {
		return entities.Service{}, ErrInvalidServicePrice
	}

	now := time.Now().UTC()
	s := entities.Service{
		ID:        uuid.NewString(),
		Title:     title,
		Price:     price.Round(2),
		Tangible:  tangible,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return u.repo.Create(ctx, s)
}

func (u *ServiceCatalogUseCase) GetByID(ctx context.Context, id string) (entities.Service, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Service{}, ErrInvalidServiceID
	}

	s, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Service{}, err
	}
	if s.ID == "" {
		return entities.Service{}, ErrServiceNotFound
	}
	return s, nil
}

func (u *ServiceCatalogUseCase) List(ctx context.Context) ([]entities.Service, error) {
	return u.repo.List(ctx)
}

func (u *ServiceCatalogUseCase) UpdatePrice(ctx context.Context, id string, newPrice decimal.Decimal) (entities.Service, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Service{}, ErrInvalidServiceID
	}
	if !newPrice.IsPositive() {
		return entities.Service{}, ErrInvalidServicePrice
	}

	updated, err := u.repo.UpdatePriceByID(ctx, id, newPrice.Round(2))
	if err != nil {
		return entities.Service{}, err
	}
	if updated.ID == "" {
		return entities.Service{}, ErrServiceNotFound
	}
	return updated, nil
}

func (u *ServiceCatalogUseCase) Deactivate(ctx context.Context, id string) (entities.Service, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Service{}, ErrInvalidServiceID
	}

	updated, err := u.repo.SetActiveByID(ctx, id, false)
	if err != nil {
		return entities.Service{}, err
	}
	if updated.ID == "" {
		return entities.Service{}, ErrServiceNotFound
	}
	return updated, nil
}

// PrepareCheckout fills items and amount of req from the catalog entry; the
// payer data in req is kept as sent.
func (u *ServiceCatalogUseCase) PrepareCheckout(ctx context.Context, id string, req entities.PaymentRequest) (entities.PaymentRequest, error) {
	s, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.PaymentRequest{}, err
	}
	if !s.Active {
		return entities.PaymentRequest{}, ErrServiceInactive
	}

	price := s.Price
	req.Items = []entities.Item{s.AsItem()}
	req.Amount = &price
	return req, nil
}
