package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"katagaki/config"
	"katagaki/internal/cache"
	"katagaki/internal/database"
	"katagaki/internal/identity"
	"katagaki/internal/metrics"
	"katagaki/internal/observability"
	"katagaki/internal/payment"
	"katagaki/internal/queue"
	"katagaki/internal/repository"
	"katagaki/internal/service"
	"katagaki/internal/worker"
	"katagaki/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// version 以 -ldflags "-X main.version=..." 注入
var version = "dev"

func main() {
	log := logger.WithComponent("main")
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}
	logger.SetLevel(cfg.Server.LogLevel)
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	pool, err := database.InitDatabase(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := database.RunMigrations(cfg.Database.URL()); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	rdb, err := database.InitRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	defer rdb.Close()

	verifier, err := identity.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		log.Fatal("Failed to initialize identity verifier", zap.Error(err))
	}

	gateway := payment.NewGateway(cfg.Stripe, nil)
	m := metrics.New(prometheus.DefaultRegisterer)

	// Repositories
	txManager := database.NewTxManager(pool)
	titleRepo := repository.NewTitleRepository(pool)
	sequenceRepo := repository.NewSequenceRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	rightRepo := repository.NewRightRepository(pool)
	proposalRepo := repository.NewProposalRepository(pool)

	// Services
	userService := service.NewUserService(userRepo)
	entitlementService := service.NewEntitlementService(
		txManager, titleRepo, rightRepo, userRepo, gateway,
		cache.NewPaymentEventLog(rdb), cfg.Webhook, m,
	)
	services := Services{
		Title:       service.NewTitleService(txManager, titleRepo, sequenceRepo, m),
		Category:    service.NewCategoryService(categoryRepo),
		User:        userService,
		Proposal:    service.NewProposalService(proposalRepo),
		Right:       service.NewRightService(rightRepo, titleRepo),
		Checkout:    service.NewCheckoutService(titleRepo, gateway, cfg.Stripe.Currency, m),
		Entitlement: entitlementService,
	}

	if err := services.Title.VerifyNumbering(ctx); err != nil {
		log.Fatal("Official number counter check failed", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)

	var paymentQueue queue.PaymentQueue
	if cfg.Webhook.Mode == "async" {
		streamQueue, err := queue.NewRedisStreamPaymentQueue(gctx, rdb, "", &queue.RedisStreamPaymentQueueConfig{
			ClaimMinIdleTime: cfg.Webhook.ClaimMinIdleTime,
			MaxDeliveries:    cfg.Webhook.MaxDeliveries,
			RedriveInterval:  cfg.Webhook.RedriveInterval,
		})
		if err != nil {
			log.Fatal("Failed to initialize payment queue", zap.Error(err))
		}
		paymentQueue = streamQueue

		paymentWorker := worker.NewPaymentWorker(entitlementService, paymentQueue, m)
		if err := paymentWorker.Start(gctx); err != nil {
			log.Fatal("Failed to start payment worker", zap.Error(err))
		}
		g.Go(func() error {
			<-paymentWorker.Done()
			return nil
		})
		log.Info("Payment worker started")
	}

	router := NewRouter(cfg, verifier, gateway, paymentQueue, services)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("Server listening", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", zap.Error(err))
		}
		return shutdownTracing(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server exited with error", zap.Error(err))
	}
}
