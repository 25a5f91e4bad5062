package request

import (
	"github.com/shopspring/decimal"
)

type CreateServiceRequest struct {
	Title    string          `json:"title" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	Tangible bool            `json:"tangible"`
}

type UpdateServicePriceRequest struct {
	Price decimal.Decimal `json:"price"`
}
