package handlers

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pix_checkout/internal/adapter/http/dto/request"
	"pix_checkout/internal/adapter/http/dto/response"
	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/infrastructure/qrcode"
	"pix_checkout/internal/usecase"
	"pix_checkout/pkg"

	"github.com/gin-gonic/gin"
)

// PixChargeHandler exposes the checkout flow of a PIX charge.
type PixChargeHandler struct {
	checkout usecase.IPixCheckoutUseCase
	catalog  usecase.IServiceCatalogUseCase
	now      func() time.Time
}

func NewPixChargeHandler(checkout usecase.IPixCheckoutUseCase, catalog usecase.IServiceCatalogUseCase) *PixChargeHandler {
	return &PixChargeHandler{checkout: checkout, catalog: catalog, now: time.Now}
}

// CreateCharge godoc
// @Summary      Start a PIX charge
// @Description  Validates the payload and starts the checkout attempt of the session. Use wait=true to block until the attempt ends.
// @Tags         pix
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header    string                     false  "Checkout session"
// @Param        wait          query     bool                       false  "Run synchronously"
// @Param        body          body      request.PixChargeRequest   true   "PIX payload"
// @Success      200           {object}  response.PixChargeResponse
// @Success      202           {object}  response.PixChargeResponse
// @Failure      400,422,429   {object}  pkg.HTTPError
// @Failure      502,504       {object}  pkg.HTTPError
// @Router       /pix/charges [post]
func (h *PixChargeHandler) CreateCharge(c *gin.Context) {
	var body request.PixChargeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Printf("[pix][handler] invalid payload err=%v", err)
		writeError(c, pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest))
		return
	}

	sessionID := body.ResolveSessionID(c.GetHeader(request.SessionHeader))
	req := body.ToEntity(c.Request.Header, c.ClientIP(), h.now())
	h.charge(c, sessionID, req)
}

// CreateServiceCharge godoc
// @Summary      Start a PIX charge for a catalog service
// @Description  Items and amount come from the catalog entry; the rest of the payload from the body.
// @Tags         pix
// @Accept       json
// @Produce      json
// @Param        service_id    path      string                     true   "Service ID"
// @Param        X-Session-ID  header    string                     false  "Checkout session"
// @Param        wait          query     bool                       false  "Run synchronously"
// @Param        body          body      request.PixChargeRequest   true   "Payer data"
// @Success      200           {object}  response.PixChargeResponse
// @Success      202           {object}  response.PixChargeResponse
// @Failure      400,404,409   {object}  pkg.HTTPError
// @Failure      422,429,502   {object}  pkg.HTTPError
// @Router       /services/{service_id}/pix [post]
func (h *PixChargeHandler) CreateServiceCharge(c *gin.Context) {
	serviceID := c.Param("service_id")

	var body request.PixChargeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Printf("[pix][handler] invalid payload service_id=%s err=%v", serviceID, err)
		writeError(c, pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest))
		return
	}

	req, err := h.catalog.PrepareCheckout(c.Request.Context(), serviceID, body.ToEntity(c.Request.Header, c.ClientIP(), h.now()))
	if err != nil {
		log.Printf("[pix][handler] prepare checkout failed service_id=%s err=%v", serviceID, err)
		writeError(c, mapServiceError(err))
		return
	}
	h.charge(c, body.ResolveSessionID(c.GetHeader(request.SessionHeader)), req)
}

func (h *PixChargeHandler) charge(c *gin.Context, sessionID string, req entities.PaymentRequest) {
	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		log.Printf("[pix][handler] pay start session=%s", sessionID)
		attempt, err := h.checkout.Pay(c.Request.Context(), sessionID, req)
		if err != nil {
			log.Printf("[pix][handler] pay failed session=%s state=%s err=%v", sessionID, attempt.State, err)
			writeError(c, mapPixError(err))
			return
		}
		log.Printf("[pix][handler] pay success session=%s attempt=%s", sessionID, attempt.ID)
		c.JSON(http.StatusOK, response.FromCheckoutAttempt(attempt))
		return
	}

	prior, _ := h.checkout.Snapshot(sessionID)
	attempt, err := h.checkout.Start(c.Request.Context(), sessionID, req)
	if err != nil {
		log.Printf("[pix][handler] start failed session=%s err=%v", sessionID, err)
		writeError(c, mapPixError(err))
		return
	}

	status := http.StatusAccepted
	if prior.ID != "" && prior.ID == attempt.ID {
		status = http.StatusOK
	}
	log.Printf("[pix][handler] start accepted session=%s attempt=%s state=%s", sessionID, attempt.ID, attempt.State)
	c.JSON(status, response.FromCheckoutAttempt(attempt))
}

// GetCharge godoc
// @Summary      Get the checkout attempt of a session
// @Tags         pix
// @Produce      json
// @Param        session_id  path      string  true  "Checkout session"
// @Success      200         {object}  response.PixChargeResponse
// @Failure      404         {object}  pkg.HTTPError
// @Router       /pix/charges/{session_id} [get]
func (h *PixChargeHandler) GetCharge(c *gin.Context) {
	sessionID := c.Param("session_id")
	attempt, err := h.checkout.Snapshot(sessionID)
	if err != nil {
		writeError(c, mapPixError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromCheckoutAttempt(attempt))
}

// AbandonCharge godoc
// @Summary      Abandon the in-flight checkout attempt of a session
// @Tags         pix
// @Produce      json
// @Param        session_id  path      string  true  "Checkout session"
// @Success      200         {object}  response.PixChargeResponse
// @Failure      404         {object}  pkg.HTTPError
// @Router       /pix/charges/{session_id} [delete]
func (h *PixChargeHandler) AbandonCharge(c *gin.Context) {
	sessionID := c.Param("session_id")
	attempt, err := h.checkout.Abandon(sessionID)
	if err != nil {
		writeError(c, mapPixError(err))
		return
	}
	log.Printf("[pix][handler] abandon session=%s attempt=%s state=%s", sessionID, attempt.ID, attempt.State)
	c.JSON(http.StatusOK, response.FromCheckoutAttempt(attempt))
}

// GetChargeQRCode godoc
// @Summary      PNG QR code of a completed charge
// @Tags         pix
// @Produce      png
// @Param        session_id  path   string  true   "Checkout session"
// @Param        size        query  int     false  "Image side in pixels"
// @Success      200
// @Failure      404,409  {object}  pkg.HTTPError
// @Router       /pix/charges/{session_id}/qrcode.png [get]
func (h *PixChargeHandler) GetChargeQRCode(c *gin.Context) {
	sessionID := c.Param("session_id")
	attempt, err := h.checkout.Snapshot(sessionID)
	if err != nil {
		writeError(c, mapPixError(err))
		return
	}
	if attempt.State != entities.FlowStateComplete || attempt.Result == nil || strings.TrimSpace(attempt.Result.PaymentCode) == "" {
		writeError(c, pkg.NewDomainErrorSimple("PIX_NOT_READY", "PIX code not available", http.StatusConflict))
		return
	}

	size := qrcode.DefaultSize
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v >= 64 && v <= 1024 {
		size = v
	}
	png, err := qrcode.RenderPNG(attempt.Result.PaymentCode, size)
	if err != nil {
		log.Printf("[pix][handler] qrcode render failed session=%s err=%v", sessionID, err)
		writeError(c, pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func writeError(c *gin.Context, appErr *pkg.AppError) {
	if appErr.HTTPStatus == http.StatusTooManyRequests && appErr.Details != "" {
		c.Header("Retry-After", appErr.Details)
	}
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

func mapPixError(err error) *pkg.AppError {
	var (
		ve *entities.ValidationError
		rl *entities.RateLimitedError
		ae *entities.AuthError
		ge *entities.GatewayError
		te *entities.TransientNetworkError
	)
	msg := entities.UserMessage(err)
	switch {
	case errors.Is(err, usecase.ErrInvalidSessionID):
		return pkg.NewDomainErrorSimple("INVALID_SESSION", "Session id is required", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrCheckoutNotFound):
		return pkg.NewDomainErrorSimple("CHECKOUT_NOT_FOUND", "Checkout attempt not found", http.StatusNotFound)
	case errors.As(err, &ve):
		return pkg.NewDomainError("VALIDATION_FAILED", msg, err, http.StatusUnprocessableEntity).WithDetails(ve.Field)
	case errors.As(err, &rl):
		return pkg.NewDomainError("RATE_LIMITED", msg, err, http.StatusTooManyRequests).
			WithDetails(strconv.Itoa(retryAfterSeconds(rl.RetryAfter)))
	case errors.Is(err, entities.ErrTimedOut):
		return pkg.NewDomainError("PIX_TIMED_OUT", msg, err, http.StatusGatewayTimeout)
	case errors.Is(err, entities.ErrAttemptAbandoned):
		return pkg.NewDomainError("CHECKOUT_ABANDONED", msg, err, http.StatusConflict)
	case errors.Is(err, entities.ErrTransactionFailed):
		return pkg.NewDomainError("PIX_FAILED", msg, err, http.StatusPaymentRequired)
	case errors.As(err, &ae):
		return pkg.NewDomainError("PAYMENT_PROVIDER_UNAUTHORIZED", msg, err, http.StatusBadGateway)
	case errors.As(err, &ge):
		if ge.StatusCode == http.StatusBadRequest {
			return pkg.NewDomainError("PAYMENT_PROVIDER_REJECTED", msg, err, http.StatusUnprocessableEntity)
		}
		return pkg.NewDomainError("PAYMENT_PROVIDER_UNAVAILABLE", msg, err, http.StatusBadGateway)
	case errors.As(err, &te):
		return pkg.NewDomainError("PAYMENT_PROVIDER_UNREACHABLE", msg, err, http.StatusBadGateway)
	case errors.Is(err, entities.ErrIncompleteResponse), errors.Is(err, entities.ErrMissingTransaction):
		return pkg.NewDomainError("PAYMENT_PROVIDER_INCOMPLETE", msg, err, http.StatusBadGateway)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", msg, err, http.StatusInternalServerError)
	}
}

func retryAfterSeconds(d time.Duration) int {
	return int(math.Max(1, math.Ceil(d.Seconds())))
}
