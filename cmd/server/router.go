package main

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/studio-interiors/site-server/config"
	"github.com/studio-interiors/site-server/internal/handlers"
	"github.com/studio-interiors/site-server/internal/middleware"
	"github.com/studio-interiors/site-server/internal/services"
	"github.com/studio-interiors/site-server/pkg/metrics"
)

const sendEmailBodyLimit = 100 * 1024

type routeHandlers struct {
	health  *handlers.HealthHandler
	email   *handlers.EmailHandler
	content *handlers.ContentHandler
	page    *handlers.PageHandler
}

// newRouter assembles middleware and routes. Everything outside /api falls
// through to the page handler.
func newRouter(cfg *config.Config, h routeHandlers) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := slices.Clone(cfg.Server.AllowedOrigins)
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:5173", "http://127.0.0.1:5173")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	generalRateLimiter := middleware.NewRateLimiter(50, 100)
	emailRateLimiter := middleware.NewRateLimiter(5, 10)

	api := router.Group("/api", middleware.NoStoreMiddleware())
	api.GET("/healthcheck", generalRateLimiter.Middleware(), h.health.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	api.POST("/send-email", emailRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(sendEmailBodyLimit), h.email.SendEmail)
	for _, collection := range services.ProxiedCollections {
		api.GET("/"+collection, generalRateLimiter.Middleware(), h.content.Collection(collection))
	}

	router.NoRoute(h.page.Serve)

	return router
}
