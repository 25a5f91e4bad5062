package routes

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	_ "pix_checkout/docs"
	"pix_checkout/internal/adapter/http/handlers"
	"pix_checkout/internal/adapter/persistence/repository"
	"pix_checkout/internal/infrastructure/database"
	"pix_checkout/internal/infrastructure/payments"
	"pix_checkout/internal/infrastructure/ratelimit"
	"pix_checkout/internal/usecase"
	"pix_checkout/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

const (
	defaultPort            = "8080"
	rateLimitSweepInterval = time.Minute
)

// Run will start the server
func Run() {
	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	getRoutes()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = defaultPort
	}
	err := router.Run(":" + port)
	if err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes() {
	ddb := database.ConnectDynamoDB()
	serviceRepo := repository.NewServiceDynamoRepository(ddb)
	if strings.EqualFold(os.Getenv("DYNAMODB_AUTO_CREATE_TABLES"), "true") {
		if err := database.EnsureTable(context.Background(), ddb, serviceRepo.TableName()); err != nil {
			log.Printf("[service][routes] ensure table failed table=%s err=%v", serviceRepo.TableName(), err)
		}
	}
	catalogUseCase := usecase.NewServiceCatalogUseCase(serviceRepo)

	gateway, err := payments.NewSyncPayGateway(payments.NewSyncPayConfigFromEnv(), newFallbackGateway())
	if err != nil {
		log.Fatalf("SyncPay gateway not configured: %v", err)
	}

	limiter := ratelimit.NewSlidingWindowLimiterFromEnv()
	limiter.StartCleanup(context.Background(), rateLimitSweepInterval)

	checkoutUseCase := usecase.NewPixCheckoutUseCase(gateway, limiter, usecase.NewCheckoutConfigFromEnv())

	pixHandler := handlers.NewPixChargeHandler(checkoutUseCase, catalogUseCase)
	serviceHandler := handlers.NewServiceCatalogHandler(catalogUseCase)

	// Rotas publicas
	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addPixRoutes(v1, pixHandler)
	addServiceRoutes(v1, serviceHandler, pixHandler)
}

// newFallbackGateway picks the provider used once the SyncPay v2 retries are
// exhausted. PIX_FALLBACK_PROVIDER=mercadopago switches to Mercado Pago,
// "none" disables the fallback.
func newFallbackGateway() interfaces.IFallbackGateway {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("PIX_FALLBACK_PROVIDER"))) {
	case "none":
		return nil
	case "mercadopago":
		mp, err := payments.NewMercadoPagoPixGateway(os.Getenv("MERCADOPAGO_ACCESS_TOKEN"))
		if err != nil {
			log.Printf("Mercado Pago fallback not configured: %v", err)
			return nil
		}
		return mp
	default:
		return payments.NewSyncPayV1Fallback(payments.NewSyncPayConfigFromEnv())
	}
}

func setMiddlewares() {
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}
