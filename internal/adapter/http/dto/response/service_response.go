package response

import (
	"time"

	"pix_checkout/internal/domain/entities"
)

type ServiceResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Price     string    `json:"price"`
	Tangible  bool      `json:"tangible"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromService(s entities.Service) ServiceResponse {
	return ServiceResponse{
		ID:        s.ID,
		Title:     s.Title,
		Price:     s.Price.StringFixed(2),
		Tangible:  s.Tangible,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func FromServices(list []entities.Service) []ServiceResponse {
	out := make([]ServiceResponse, 0, len(list))
	for _, s := range list {
		out = append(out, FromService(s))
	}
	return out
}
