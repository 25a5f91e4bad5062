package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pix_checkout/internal/adapter/http/handlers"
	"pix_checkout/internal/adapter/http/handlers/mocks"
	"pix_checkout/internal/infrastructure/payments"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func TestRoutesRegistered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockIServiceCatalogUseCase(ctrl)
	pixHandler := handlers.NewPixChargeHandler(mocks.NewMockIPixCheckoutUseCase(ctrl), catalog)

	r := gin.New()
	v1 := r.Group("/v1")
	addPingRoutes(v1)
	addPixRoutes(v1, pixHandler)
	addServiceRoutes(v1, handlers.NewServiceCatalogHandler(catalog), pixHandler)

	want := map[string]bool{
		"GET /v1/ping":                               false,
		"POST /v1/pix/charges":                       false,
		"GET /v1/pix/charges/:session_id":            false,
		"DELETE /v1/pix/charges/:session_id":         false,
		"GET /v1/pix/charges/:session_id/qrcode.png": false,
		"POST /v1/services":                          false,
		"GET /v1/services":                           false,
		"GET /v1/services/:service_id":               false,
		"PATCH /v1/services/:service_id/price":       false,
		"DELETE /v1/services/:service_id":            false,
		"POST /v1/services/:service_id/pix":          false,
	}
	for _, route := range r.Routes() {
		key := route.Method + " " + route.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for key, found := range want {
		if !found {
			t.Fatalf("route %s not registered", key)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestNewFallbackGateway(t *testing.T) {
	t.Setenv("PIX_FALLBACK_PROVIDER", "none")
	if fb := newFallbackGateway(); fb != nil {
		t.Fatalf("expected no fallback, got %T", fb)
	}

	t.Setenv("PIX_FALLBACK_PROVIDER", "")
	fb := newFallbackGateway()
	if _, ok := fb.(*payments.SyncPayV1Fallback); !ok {
		t.Fatalf("expected SyncPay v1 fallback, got %T", fb)
	}

	t.Setenv("PIX_FALLBACK_PROVIDER", "mercadopago")
	t.Setenv("MERCADOPAGO_ACCESS_TOKEN", "")
	t.Setenv("PAYMENT_GATEWAY_MOCK", "true")
	fb = newFallbackGateway()
	if fb == nil || fb.Name() != "mercadopago" {
		t.Fatalf("expected mercadopago fallback, got %v", fb)
	}
}
