package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"pix_checkout/internal/adapter/http/handlers/mocks"
	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func newServiceRouter(t *testing.T) (*gin.Engine, *mocks.MockIServiceCatalogUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIServiceCatalogUseCase(ctrl)
	h := NewServiceCatalogHandler(uc)

	r := gin.New()
	r.POST("/v1/services", h.CreateService)
	r.GET("/v1/services", h.ListServices)
	r.GET("/v1/services/:service_id", h.GetService)
	r.PATCH("/v1/services/:service_id/price", h.UpdateServicePrice)
	r.DELETE("/v1/services/:service_id", h.DeactivateService)
	return r, uc
}

func TestServiceCatalogHandler_CreateService(t *testing.T) {
	t.Run("invalid payload", func(t *testing.T) {
		r, _ := newServiceRouter(t)
		w := doRequest(r, http.MethodPost, "/v1/services", `{"price": 10}`, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("invalid price", func(t *testing.T) {
		r, uc := newServiceRouter(t)
		uc.EXPECT().Create(gomock.Any(), "RG", gomock.Any(), false).Return(entities.Service{}, usecase.ErrInvalidServicePrice)

		w := doRequest(r, http.MethodPost, "/v1/services", `{"title": "RG", "price": -1}`, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		r, uc := newServiceRouter(t)
		now := time.Now().UTC()
		uc.EXPECT().Create(gomock.Any(), "RG", gomock.Any(), true).
			DoAndReturn(func(_ any, title string, price decimal.Decimal, tangible bool) (entities.Service, error) {
				if !price.Equal(decimal.RequireFromString("49.9")) {
					t.Fatalf("unexpected price %s", price)
				}
				return entities.Service{ID: "svc-1", Title: title, Price: price, Tangible: tangible, Active: true, CreatedAt: now, UpdatedAt: now}, nil
			})

		w := doRequest(r, http.MethodPost, "/v1/services", `{"title": "RG", "price": 49.9, "tangible": true}`, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		var got map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &got)
		if got["id"] != "svc-1" || got["price"] != "49.90" {
			t.Fatalf("unexpected body: %v", got)
		}
	})
}

func TestServiceCatalogHandler_ReadAndUpdate(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		r, uc := newServiceRouter(t)
		uc.EXPECT().List(gomock.Any()).Return([]entities.Service{{ID: "svc-1"}, {ID: "svc-2"}}, nil)

		w := doRequest(r, http.MethodGet, "/v1/services", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var got []map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &got)
		if len(got) != 2 {
			t.Fatalf("expected 2 services, got %d", len(got))
		}
	})

	t.Run("list error", func(t *testing.T) {
		r, uc := newServiceRouter(t)
		uc.EXPECT().List(gomock.Any()).Return(nil, errors.New("dynamo down"))

		w := doRequest(r, http.MethodGet, "/v1/services", "", nil)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
	})

	t.Run("get not found", func(t *testing.T) {
		r, uc := newServiceRouter(t)
		uc.EXPECT().GetByID(gomock.Any(), "svc-x").Return(entities.Service{}, usecase.ErrServiceNotFound)

		w := doRequest(r, http.MethodGet, "/v1/services/svc-x", "", nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("update price", func(t *testing.T) {
		r, uc := newServiceRouter(t)
		uc.EXPECT().UpdatePrice(gomock.Any(), "svc-1", gomock.Any()).Return(entities.Service{ID: "svc-1", Price: decimal.RequireFromString("59.9")}, nil)

		w := doRequest(r, http.MethodPatch, "/v1/services/svc-1/price", `{"price": "59.90"}`, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("update price invalid body", func(t *testing.T) {
		r, _ := newServiceRouter(t)
		w := doRequest(r, http.MethodPatch, "/v1/services/svc-1/price", `{"price": "abc"}`, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("deactivate", func(t *testing.T) {
		r, uc := newServiceRouter(t)
		uc.EXPECT().Deactivate(gomock.Any(), "svc-1").Return(entities.Service{ID: "svc-1", Active: false}, nil)

		w := doRequest(r, http.MethodDelete, "/v1/services/svc-1", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}
