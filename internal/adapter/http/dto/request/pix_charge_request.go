package request

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"pix_checkout/internal/domain/entities"

	"github.com/google/uuid"
)

// SessionHeader lets a client pin several requests to the same checkout
// attempt.
const SessionHeader = "X-Session-ID"

// PixChargeRequest is the body of POST /v1/pix/charges: the PIX payload plus
// an optional session id. For POST /v1/services/:id/pix items and amount are
// taken from the catalog and ignored here.
type PixChargeRequest struct {
	SessionID string `json:"session_id,omitempty"`
	entities.PaymentRequest
}

// ResolveSessionID picks the header, then the body field, then the payer CPF.
func (r PixChargeRequest) ResolveSessionID(header string) string {
	if v := strings.TrimSpace(header); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.SessionID); v != "" {
		return v
	}
	if r.Customer != nil {
		if cpf := entities.DigitsOnly(r.Customer.CPF); cpf != "" {
			return "cpf:" + cpf
		}
	}
	return ""
}

// ToEntity fills the fields the caller may omit: the payer IP (from proxy
// headers, then remoteIP) and the external reference.
func (r PixChargeRequest) ToEntity(headers http.Header, remoteIP string, now time.Time) entities.PaymentRequest {
	req := r.PaymentRequest
	if strings.TrimSpace(req.IP) == "" {
		req.IP = ResolveClientIP(headers, remoteIP)
	}
	if req.Customer != nil && strings.TrimSpace(req.Customer.ExternalRef) == "" {
		customer := *req.Customer
		customer.ExternalRef = NewExternalRef(now)
		req.Customer = &customer
	}
	return req
}

// ResolveClientIP honours CF-Connecting-IP, X-Forwarded-For (first hop) and
// X-Real-IP, in that order.
func ResolveClientIP(headers http.Header, remoteIP string) string {
	if v := strings.TrimSpace(headers.Get("CF-Connecting-IP")); v != "" {
		return v
	}
	if v := headers.Get("X-Forwarded-For"); v != "" {
		first, _, _ := strings.Cut(v, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if v := strings.TrimSpace(headers.Get("X-Real-IP")); v != "" {
		return v
	}
	if host, _, err := net.SplitHostPort(remoteIP); err == nil {
		return host
	}
	return strings.TrimSpace(remoteIP)
}

// NewExternalRef builds "ref_<unix millis>_<8 hex chars>".
func NewExternalRef(now time.Time) string {
	return fmt.Sprintf("ref_%d_%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
