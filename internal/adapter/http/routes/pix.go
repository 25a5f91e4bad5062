package routes

import (
	"pix_checkout/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathPixCharges = "/pix/charges"
	PathServices   = "/services"
)

func addPixRoutes(rg *gin.RouterGroup, pixHandler *handlers.PixChargeHandler) {
	charges := rg.Group(PathPixCharges)
	{
		charges.POST("", pixHandler.CreateCharge)
		charges.GET("/:session_id", pixHandler.GetCharge)
		charges.DELETE("/:session_id", pixHandler.AbandonCharge)
		charges.GET("/:session_id/qrcode.png", pixHandler.GetChargeQRCode)
	}
}

func addServiceRoutes(rg *gin.RouterGroup, serviceHandler *handlers.ServiceCatalogHandler, pixHandler *handlers.PixChargeHandler) {
	services := rg.Group(PathServices)
	{
		services.POST("", serviceHandler.CreateService)
		services.GET("", serviceHandler.ListServices)
		services.GET("/:service_id", serviceHandler.GetService)
		services.PATCH("/:service_id/price", serviceHandler.UpdateServicePrice)
		services.DELETE("/:service_id", serviceHandler.DeactivateService)
		services.POST("/:service_id/pix", pixHandler.CreateServiceCharge)
	}
}
