package handlers

import (
	"errors"
	"log"
	"net/http"

	"pix_checkout/internal/adapter/http/dto/request"
	"pix_checkout/internal/adapter/http/dto/response"
	"pix_checkout/internal/usecase"
	"pix_checkout/pkg"

	"github.com/gin-gonic/gin"
)

// ServiceCatalogHandler handles HTTP requests for the purchasable services.
type ServiceCatalogHandler struct {
	usecase usecase.IServiceCatalogUseCase
}

func NewServiceCatalogHandler(uc usecase.IServiceCatalogUseCase) *ServiceCatalogHandler {
	return &ServiceCatalogHandler{usecase: uc}
}

// CreateService godoc
// @Summary      Create a service
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        body  body      request.CreateServiceRequest  true  "Service"
// @Success      201   {object}  response.ServiceResponse
// @Failure      400   {object}  pkg.HTTPError
// @Router       /services [post]
func (h *ServiceCatalogHandler) CreateService(c *gin.Context) {
	var body request.CreateServiceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Printf("[service][handler] invalid payload err=%v", err)
		writeError(c, pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest))
		return
	}

	created, err := h.usecase.Create(c.Request.Context(), body.Title, body.Price, body.Tangible)
	if err != nil {
		log.Printf("[service][handler] create failed title=%q err=%v", body.Title, err)
		writeError(c, mapServiceError(err))
		return
	}
	log.Printf("[service][handler] create success service_id=%s", created.ID)
	c.JSON(http.StatusCreated, response.FromService(created))
}

// ListServices godoc
// @Summary      List services
// @Tags         services
// @Produce      json
// @Success      200  {array}   response.ServiceResponse
// @Failure      500  {object}  pkg.HTTPError
// @Router       /services [get]
func (h *ServiceCatalogHandler) ListServices(c *gin.Context) {
	list, err := h.usecase.List(c.Request.Context())
	if err != nil {
		log.Printf("[service][handler] list failed err=%v", err)
		writeError(c, mapServiceError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromServices(list))
}

// GetService godoc
// @Summary      Get a service
// @Tags         services
// @Produce      json
// @Param        service_id  path      string  true  "Service ID"
// @Success      200         {object}  response.ServiceResponse
// @Failure      404         {object}  pkg.HTTPError
// @Router       /services/{service_id} [get]
func (h *ServiceCatalogHandler) GetService(c *gin.Context) {
	id := c.Param("service_id")
	s, err := h.usecase.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Printf("[service][handler] get failed service_id=%s err=%v", id, err)
		writeError(c, mapServiceError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromService(s))
}

// UpdateServicePrice godoc
// @Summary      Update the price of a service
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        service_id  path      string                             true  "Service ID"
// @Param        body        body      request.UpdateServicePriceRequest  true  "New price"
// @Success      200         {object}  response.ServiceResponse
// @Failure      400,404     {object}  pkg.HTTPError
// @Router       /services/{service_id}/price [patch]
func (h *ServiceCatalogHandler) UpdateServicePrice(c *gin.Context) {
	id := c.Param("service_id")
	var body request.UpdateServicePriceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Printf("[service][handler] invalid payload service_id=%s err=%v", id, err)
		writeError(c, pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest))
		return
	}

	updated, err := h.usecase.UpdatePrice(c.Request.Context(), id, body.Price)
	if err != nil {
		log.Printf("[service][handler] update price failed service_id=%s err=%v", id, err)
		writeError(c, mapServiceError(err))
		return
	}
	log.Printf("[service][handler] update price success service_id=%s price=%s", id, updated.Price)
	c.JSON(http.StatusOK, response.FromService(updated))
}

// DeactivateService godoc
// @Summary      Deactivate a service
// @Tags         services
// @Produce      json
// @Param        service_id  path      string  true  "Service ID"
// @Success      200         {object}  response.ServiceResponse
// @Failure      404         {object}  pkg.HTTPError
// @Router       /services/{service_id} [delete]
func (h *ServiceCatalogHandler) DeactivateService(c *gin.Context) {
	id := c.Param("service_id")
	updated, err := h.usecase.Deactivate(c.Request.Context(), id)
	if err != nil {
		log.Printf("[service][handler] deactivate failed service_id=%s err=%v", id, err)
		writeError(c, mapServiceError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromService(updated))
}

func mapServiceError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidServiceID), errors.Is(err, usecase.ErrInvalidServiceTitle), errors.Is(err, usecase.ErrInvalidServicePrice):
		return pkg.NewDomainError("INVALID_REQUEST", "Invalid request", err, http.StatusBadRequest).WithDetails(err.Error())
	case errors.Is(err, usecase.ErrServiceNotFound):
		return pkg.NewDomainErrorSimple("SERVICE_NOT_FOUND", "Service not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrServiceInactive):
		return pkg.NewDomainErrorSimple("SERVICE_INACTIVE", "Service is not available for purchase", http.StatusConflict)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
