package payments

import (
	"pix_checkout/internal/domain/entities"
)

// syncPayPayload is the wire body of a SyncPay cash-in. Money goes out as a
// JSON number, which is what both API versions expect.
type syncPayPayload struct {
	IP          string             `json:"ip"`
	Pix         syncPayPix         `json:"pix"`
	Items       []syncPayItem      `json:"items"`
	Amount      float64            `json:"amount"`
	Customer    syncPayCustomer    `json:"customer"`
	PostbackURL string             `json:"postbackUrl"`
	Metadata    *entities.Metadata `json:"metadata,omitempty"`
	Traceable   bool               `json:"traceable"`
}

type syncPayPix struct {
	ExpiresInDays string `json:"expiresInDays"`
}

type syncPayItem struct {
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	Tangible  bool    `json:"tangible"`
	UnitPrice float64 `json:"unitPrice"`
}

type syncPayCustomer struct {
	CPF         string           `json:"cpf,omitempty"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Phone       string           `json:"phone"`
	ExternalRef string           `json:"externaRef"`
	Document    *syncPayDocument `json:"document,omitempty"`
	Address     syncPayAddress   `json:"address"`
}

// syncPayDocument is the V1 shape of the payer document.
type syncPayDocument struct {
	Number string `json:"number"`
	Type   string `json:"type"`
}

type syncPayAddress struct {
	City         string `json:"city"`
	State        string `json:"state"`
	Street       string `json:"street"`
	Country      string `json:"country"`
	ZipCode      string `json:"zipCode"`
	Neighborhood string `json:"neighborhood"`
	StreetNumber string `json:"streetNumber"`
	Complement   string `json:"complement,omitempty"`
}

// toSyncPayPayload expects a request that already passed validation.
func toSyncPayPayload(req entities.PaymentRequest) syncPayPayload {
	p := syncPayPayload{
		IP:          req.IP,
		PostbackURL: req.PostbackURL,
		Metadata:    req.Metadata,
		Traceable:   req.Traceable,
	}
	if req.Pix != nil {
		p.Pix.ExpiresInDays = req.Pix.ExpiresInDays
	}
	if req.Amount != nil {
		p.Amount = req.Amount.InexactFloat64()
	}
	for _, it := range req.Items {
		item := syncPayItem{Title: it.Title}
		if it.Quantity != nil {
			item.Quantity = *it.Quantity
		}
		if it.Tangible != nil {
			item.Tangible = *it.Tangible
		}
		if it.UnitPrice != nil {
			item.UnitPrice = it.UnitPrice.InexactFloat64()
		}
		p.Items = append(p.Items, item)
	}
	if c := req.Customer; c != nil {
		p.Customer = syncPayCustomer{
			CPF:         c.CPF,
			Name:        c.Name,
			Email:       c.Email,
			Phone:       c.Phone,
			ExternalRef: c.ExternalRef,
		}
		if a := c.Address; a != nil {
			p.Customer.Address = syncPayAddress{
				City:         a.City,
				State:        a.State,
				Street:       a.Street,
				Country:      a.Country,
				ZipCode:      a.ZipCode,
				Neighborhood: a.Neighborhood,
				StreetNumber: string(a.StreetNumber),
				Complement:   a.Complement,
			}
		}
	}
	return p
}
