package api

import (
	"net/http"

	"nightlife-sync/pkg/logger"
	"nightlife-sync/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter creates and configures the Gin router.
func NewRouter(log *logger.Logger, prefs *PreferenceHandler, events *EventHandler) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CorrelationID())
	r.Use(middleware.RequestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	users := r.Group("/users/:id")
	users.GET("/preferences", prefs.GetPreferences)
	users.HEAD("/preferences", prefs.HeadPreferences)
	users.PATCH("/preferences", prefs.PatchPreferences)

	r.POST("/plans/:id/events", events.PublishPlanEvent)

	return r
}
