package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vitalis-labs/healthmarket/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(authService *service.AuthService, recordService *service.RecordService, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))

	handlers := NewHandlers(authService, recordService, logger)

	router.GET("/health", handlers.Health)

	auth := router.Group("/auth")
	{
		auth.POST("/challenge", handlers.Challenge)
		auth.POST("/verify", handlers.Verify)
	}

	records := router.Group("/health-data")
	records.Use(AuthMiddleware(authService, logger))
	{
		records.GET("", handlers.List)
		records.POST("", handlers.Register)
		records.GET("/:id", handlers.Get)
		records.PUT("/:id/price", handlers.UpdatePrice)
		records.POST("/:id/grants", handlers.Grant)
		records.GET("/:id/payload", handlers.Payload)
	}

	return router
}
