package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/infrastructure/qrcode"
	"pix_checkout/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

const providerMercadoPago = "mercadopago"

var brasilia = time.FixedZone("BRT", -3*60*60)

var ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
var ErrMercadoPagoGatewayNotConfigured = errors.New("mercado pago gateway not configured")

// MercadoPagoPixGateway is an alternative fallback that issues the PIX charge
// through Mercado Pago when SyncPay is unavailable.
type MercadoPagoPixGateway struct {
	client   payment.Client
	mockMode bool
	now      func() time.Time
}

var _ interfaces.IFallbackGateway = (*MercadoPagoPixGateway)(nil)

func NewMercadoPagoPixGateway(accessToken string) (*MercadoPagoPixGateway, error) {
	if isPaymentGatewayMockEnabled() {
		log.Printf("[pix][mercadopago] mock mode enabled")
		return &MercadoPagoPixGateway{mockMode: true, now: time.Now}, nil
	}

	if accessToken == "" {
		log.Printf("[pix][mercadopago] missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		log.Printf("[pix][mercadopago] failed creating sdk config err=%v", err)
		return nil, err
	}
	log.Printf("[pix][mercadopago] client initialized")

	return &MercadoPagoPixGateway{client: payment.NewClient(cfg), now: time.Now}, nil
}

func (g *MercadoPagoPixGateway) Name() string { return providerMercadoPago }

func (g *MercadoPagoPixGateway) CreateFallback(ctx context.Context, req entities.PaymentRequest) (entities.TransactionResult, error) {
	if g != nil && g.mockMode {
		return g.mockCreate(req)
	}
	if g == nil || g.client == nil {
		log.Printf("[pix][mercadopago] gateway not configured")
		return entities.TransactionResult{}, ErrMercadoPagoGatewayNotConfigured
	}

	requestPayload, err := json.Marshal(mercadoPagoPixPayload(req))
	if err != nil {
		return entities.TransactionResult{}, err
	}
	var sdkReq payment.Request
	if err := json.Unmarshal(requestPayload, &sdkReq); err != nil {
		log.Printf("[pix][mercadopago] payload unmarshal failed err=%v", err)
		return entities.TransactionResult{}, err
	}

	resp, err := g.client.Create(ctx, sdkReq)
	if err != nil {
		log.Printf("[pix][mercadopago] sdk create failed err=%v", err)
		return entities.TransactionResult{}, &entities.GatewayError{ProviderDetails: err.Error(), Err: err}
	}

	b, err := json.Marshal(resp)
	if err != nil {
		log.Printf("[pix][mercadopago] response marshal failed err=%v", err)
		return entities.TransactionResult{}, err
	}
	log.Printf("[pix][mercadopago] create success provider_payment_id=%d provider_status=%s", resp.ID, resp.Status)

	return NormalizeTransaction(b, providerMercadoPago)
}

// mercadoPagoPixPayload maps the checkout request onto the Mercado Pago
// payment body with payment_method_id "pix".
func mercadoPagoPixPayload(req entities.PaymentRequest) map[string]any {
	body := map[string]any{
		"payment_method_id": "pix",
		"notification_url":  req.PostbackURL,
	}
	if req.Amount != nil {
		body["transaction_amount"] = req.Amount.InexactFloat64()
	}
	if len(req.Items) > 0 {
		body["description"] = req.Items[0].Title
	}
	if req.Pix != nil {
		if d, err := time.ParseInLocation(time.DateOnly, req.Pix.ExpiresInDays, brasilia); err == nil {
			body["date_of_expiration"] = d.Add(24*time.Hour - time.Second).Format(time.RFC3339)
		}
	}
	if c := req.Customer; c != nil {
		first, last, _ := strings.Cut(c.Name, " ")
		body["external_reference"] = c.ExternalRef
		body["payer"] = map[string]any{
			"email":      c.Email,
			"first_name": first,
			"last_name":  last,
			"identification": map[string]any{
				"type":   "CPF",
				"number": c.CPF,
			},
		}
	}
	return body
}

func (g *MercadoPagoPixGateway) mockCreate(req entities.PaymentRequest) (entities.TransactionResult, error) {
	id := strconv.FormatInt(g.now().UTC().UnixNano(), 10)
	amount := "0.00"
	if req.Amount != nil {
		amount = req.Amount.StringFixed(2)
	}
	code := fmt.Sprintf("00020126360014br.gov.bcb.pix0114mock%s5204000053039865406%s5802BR", id, amount)

	image, err := qrcode.RenderBase64(code, qrcode.DefaultSize)
	if err != nil {
		log.Printf("[pix][mercadopago] mock qr render failed err=%v", err)
		return entities.TransactionResult{}, err
	}

	log.Printf("[pix][mercadopago] mock create success provider_payment_id=%s", id)
	return entities.TransactionResult{
		ID:               id,
		Status:           entities.TransactionStatusPending,
		PaymentCode:      code,
		PaymentCodeImage: image,
		Provider:         providerMercadoPago,
	}, nil
}

func isPaymentGatewayMockEnabled() bool {
	for _, key := range []string{"PAYMENT_GATEWAY_MOCK", "MERCADOPAGO_MOCK"} {
		v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
		switch v {
		case "1", "true", "yes", "on", "mock":
			return true
		}
	}
	return false
}
