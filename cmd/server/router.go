package main

import (
	"net/http"

	"katagaki/config"
	"katagaki/internal/handler"
	"katagaki/internal/identity"
	"katagaki/internal/middleware"
	"katagaki/internal/payment"
	"katagaki/internal/queue"
	"katagaki/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Services struct {
	Title       service.TitleService
	Category    service.CategoryService
	User        service.UserService
	Proposal    service.ProposalService
	Right       service.RightService
	Checkout    service.CheckoutService
	Entitlement service.EntitlementService
}

func NewRouter(
	cfg *config.Config,
	verifier identity.Verifier,
	gateway payment.Gateway,
	paymentQueue queue.PaymentQueue,
	services Services,
) *gin.Engine {
	router := gin.New()
	router.ContextWithFallback = true

	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		otelgin.Middleware(cfg.OTEL.ServiceName),
		middleware.Metrics(prometheus.DefaultRegisterer),
		middleware.Logger(),
		cors.New(corsConfig(cfg.Server)),
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.Authenticate(verifier, services.User)
	checkoutLimit := middleware.NewRateLimiter(
		cfg.RateLimit.CheckoutRPS,
		cfg.RateLimit.CheckoutBurst,
		middleware.KeyByUserOrIP(),
	)

	handler.NewTitleHandler(services.Title).RegisterRoutes(router, auth)
	handler.NewCategoryHandler(services.Category).RegisterRoutes(router, auth)
	handler.NewUserHandler(services.User).RegisterRoutes(router, auth)
	handler.NewProposalHandler(services.Proposal).RegisterRoutes(router, auth)
	handler.NewRightHandler(services.Right).RegisterRoutes(router, auth)
	handler.NewCheckoutHandler(services.Checkout, cfg.Server.BaseURL).RegisterRoutes(router, auth, checkoutLimit.Handler())
	handler.NewWebhookHandler(gateway, services.Entitlement, paymentQueue, cfg.Webhook.Mode).RegisterRoutes(router)

	return router
}

func corsConfig(cfg config.ServerConfig) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-ID")
	corsCfg.ExposeHeaders = []string{"X-Request-ID"}
	if len(cfg.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = cfg.AllowedOrigins
	return corsCfg
}
