package entities

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// PaymentRequest is the PIX charge payload accepted by the checkout flow and
// forwarded to the gateway after validation.
//
// Field order matters: the validator walks fields in declaration order and
// reports the first failure, so the order below is the check order.
//
// Amount is NOT reconciled against the items total.
type PaymentRequest struct {
	IP          string           `json:"ip" validate:"required"`
	Pix         *PixOption       `json:"pix" validate:"required"`
	Items       []Item           `json:"items" validate:"required,min=1,dive"`
	Amount      *decimal.Decimal `json:"amount" validate:"required,min_amount"`
	Customer    *Customer        `json:"customer" validate:"required"`
	PostbackURL string           `json:"postbackUrl" validate:"required,startswith=http"`

	Metadata  *Metadata `json:"metadata,omitempty"`
	Traceable bool      `json:"traceable,omitempty"`
}

// PixOption carries the PIX-specific expiration marker. Despite its name the
// provider expects a calendar date ("2024-12-31"), not a day count.
type PixOption struct {
	ExpiresInDays string `json:"expiresInDays" validate:"required,pix_date"`
}

type Item struct {
	Title     string           `json:"title" validate:"required"`
	Quantity  *int             `json:"quantity" validate:"required,gt=0"`
	Tangible  *bool            `json:"tangible" validate:"required"`
	UnitPrice *decimal.Decimal `json:"unitPrice" validate:"required"`

	// wrongType holds the JSON names of fields whose wire value had the
	// wrong type. Such fields are left nil so validation reports them.
	wrongType map[string]bool
}

// UnmarshalJSON never fails on a badly typed field; it records it instead,
// so the payload still reaches validation and the offending path is named.
func (it *Item) UnmarshalJSON(b []byte) error {
	var raw struct {
		Title     json.RawMessage `json:"title"`
		Quantity  json.RawMessage `json:"quantity"`
		Tangible  json.RawMessage `json:"tangible"`
		UnitPrice json.RawMessage `json:"unitPrice"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*it = Item{}

	var title string
	if it.decodeField("title", raw.Title, &title) {
		it.Title = title
	}
	var qty int
	if it.decodeField("quantity", raw.Quantity, &qty) {
		it.Quantity = &qty
	}
	var tangible bool
	if it.decodeField("tangible", raw.Tangible, &tangible) {
		it.Tangible = &tangible
	}
	var price decimal.Decimal
	if it.decodeField("unitPrice", raw.UnitPrice, &price) {
		it.UnitPrice = &price
	}
	return nil
}

// decodeField reports whether raw held a value of dst's type. Absent and
// null values are not recorded as wrong.
func (it *Item) decodeField(name string, raw json.RawMessage, dst any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		if it.wrongType == nil {
			it.wrongType = map[string]bool{}
		}
		it.wrongType[name] = true
		return false
	}
	return true
}

// WrongType reports whether the named JSON field was sent with a value of
// the wrong type.
func (it Item) WrongType(field string) bool {
	return it.wrongType[field]
}

type Customer struct {
	CPF         string   `json:"cpf" validate:"required,cpf"`
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone" validate:"required,br_phone"`
	ExternalRef string   `json:"externaRef" validate:"required"`
	Address     *Address `json:"address" validate:"required"`
}

type Address struct {
	City         string       `json:"city" validate:"required"`
	State        string       `json:"state" validate:"required"`
	Street       string       `json:"street" validate:"required"`
	Country      string       `json:"country" validate:"required"`
	ZipCode      string       `json:"zipCode" validate:"required,cep"`
	Neighborhood string       `json:"neighborhood" validate:"required"`
	StreetNumber StreetNumber `json:"streetNumber" validate:"required"`
	Complement   string       `json:"complement,omitempty"`
}

type Metadata struct {
	Provider                 string `json:"provider,omitempty"`
	SellURL                  string `json:"sell_url,omitempty"`
	OrderURL                 string `json:"order_url,omitempty"`
	UserEmail                string `json:"user_email,omitempty"`
	UserIdentificationNumber string `json:"user_identitication_number,omitempty"`
}

// StreetNumber accepts both "123" and 123 on the wire.
type StreetNumber string

func (n *StreetNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = StreetNumber(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = StreetNumber(num.String())
	return nil
}

// Normalize trims free-text fields and strips every non-digit from the
// document, phone and postal code, which is the shape the provider expects.
func (r *PaymentRequest) Normalize() {
	r.IP = strings.TrimSpace(r.IP)
	r.PostbackURL = strings.TrimSpace(r.PostbackURL)
	if r.Pix != nil {
		r.Pix.ExpiresInDays = strings.TrimSpace(r.Pix.ExpiresInDays)
	}
	for i := range r.Items {
		r.Items[i].Title = strings.TrimSpace(r.Items[i].Title)
	}
	if r.Customer == nil {
		return
	}
	c := r.Customer
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.ExternalRef = strings.TrimSpace(c.ExternalRef)
	c.CPF = DigitsOnly(c.CPF)
	c.Phone = DigitsOnly(c.Phone)
	if c.Address != nil {
		c.Address.ZipCode = DigitsOnly(c.Address.ZipCode)
		c.Address.City = strings.TrimSpace(c.Address.City)
		c.Address.State = strings.TrimSpace(c.Address.State)
		c.Address.Street = strings.TrimSpace(c.Address.Street)
		c.Address.Country = strings.TrimSpace(c.Address.Country)
		c.Address.Neighborhood = strings.TrimSpace(c.Address.Neighborhood)
		c.Address.StreetNumber = StreetNumber(strings.TrimSpace(string(c.Address.StreetNumber)))
	}
}

// DigitsOnly drops every rune that is not an ASCII digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TransactionStatus is the normalized provider status.
type TransactionStatus string

const (
	TransactionStatusPending         TransactionStatus = "pending"
	TransactionStatusWaitingApproval TransactionStatus = "waiting_approval"
	TransactionStatusCompleted       TransactionStatus = "completed"
	TransactionStatusFailed          TransactionStatus = "failed"
)

// TransactionResult is the single internal shape every provider response is
// normalized into.
//
// Raw keeps the provider body for diagnostics only; nothing branches on it.
type TransactionResult struct {
	ID               string            `json:"id"`
	Status           TransactionStatus `json:"status"`
	PaymentCode      string            `json:"payment_code,omitempty"`
	PaymentCodeImage string            `json:"payment_code_image,omitempty"`
	Message          string            `json:"message,omitempty"`
	Provider         string            `json:"provider,omitempty"`
	Raw              json.RawMessage   `json:"-"`
}

// HasPaymentData reports whether both the copy-paste code and its image are
// present, i.e. whether the charge can be shown to the payer.
func (r TransactionResult) HasPaymentData() bool {
	return strings.TrimSpace(r.PaymentCode) != "" && strings.TrimSpace(r.PaymentCodeImage) != ""
}

// Settle enforces that completed implies both payment fields; a completed
// result missing either one is downgraded to pending.
func (r TransactionResult) Settle() TransactionResult {
	if r.Status == "" {
		r.Status = TransactionStatusPending
	}
	if r.Status == TransactionStatusCompleted && !r.HasPaymentData() {
		r.Status = TransactionStatusPending
	}
	return r
}
