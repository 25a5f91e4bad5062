package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is a purchasable service from the catalog (e.g. an appointment
// slot). A checkout for a catalog service takes its title and price from here.
//
// Storage model (DynamoDB):
//   - PK: id
type Service struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Tangible  bool            `json:"tangible"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AsItem renders the service as the single line item of a PIX charge.
func (s Service) AsItem() Item {
	qty := 1
	tangible := s.Tangible
	price := s.Price
	return Item{
		Title:     s.Title,
		Quantity:  &qty,
		Tangible:  &tangible,
		UnitPrice: &price,
	}
}
