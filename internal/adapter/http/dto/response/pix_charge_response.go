package response

import (
	"time"

	"pix_checkout/internal/domain/entities"
)

type PollProgress struct {
	Attempt      int       `json:"attempt"`
	MaxAttempts  int       `json:"max_attempts"`
	LastPolledAt time.Time `json:"last_polled_at,omitempty"`
}

// PixChargeResponse is the client view of a checkout attempt.
type PixChargeResponse struct {
	AttemptID        string        `json:"attempt_id"`
	SessionID        string        `json:"session_id"`
	State            string        `json:"state"`
	TransactionID    string        `json:"transaction_id,omitempty"`
	Status           string        `json:"status,omitempty"`
	PaymentCode      string        `json:"payment_code,omitempty"`
	PaymentCodeImage string        `json:"payment_code_image,omitempty"`
	Provider         string        `json:"provider,omitempty"`
	Poll             *PollProgress `json:"poll,omitempty"`
	Message          string        `json:"message,omitempty"`
	StartedAt        time.Time     `json:"started_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	ExpiresAt        *time.Time    `json:"expires_at,omitempty"`
}

func FromCheckoutAttempt(a entities.CheckoutAttempt) PixChargeResponse {
	res := PixChargeResponse{
		AttemptID:   a.ID,
		SessionID:   a.SessionID,
		State:       string(a.State),
		Message:     entities.UserMessage(a.Err),
		StartedAt:   a.StartedAt,
		UpdatedAt:   a.UpdatedAt,
		CompletedAt: a.CompletedAt,
	}
	if r := a.Result; r != nil {
		res.TransactionID = r.ID
		res.Status = string(r.Status)
		res.PaymentCode = r.PaymentCode
		res.PaymentCodeImage = r.PaymentCodeImage
		res.Provider = r.Provider
	}
	if p := a.Poll; p != nil {
		res.Poll = &PollProgress{Attempt: p.Attempt, MaxAttempts: p.MaxAttempts, LastPolledAt: p.LastPolledAt}
	}
	if exp := a.ExpiresAt(); !exp.IsZero() {
		res.ExpiresAt = &exp
	}
	return res
}
