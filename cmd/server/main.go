package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"atelierhub/internal/billing"
	billingrepository "atelierhub/internal/billing/repository"
	billingservice "atelierhub/internal/billing/service"
	billinghttp "atelierhub/internal/billing/transport/http"
	clientrepository "atelierhub/internal/client/repository"
	clientservice "atelierhub/internal/client/service"
	clienthttp "atelierhub/internal/client/transport/http"
	"atelierhub/internal/config"
	invoicerepository "atelierhub/internal/invoice/repository"
	invoiceservice "atelierhub/internal/invoice/service"
	invoicehttp "atelierhub/internal/invoice/transport/http"
	"atelierhub/internal/metrics"
	patternrepository "atelierhub/internal/pattern/repository"
	patternservice "atelierhub/internal/pattern/service"
	patternhttp "atelierhub/internal/pattern/transport/http"
	"atelierhub/internal/payment"
	projectrepository "atelierhub/internal/project/repository"
	projectservice "atelierhub/internal/project/service"
	projecthttp "atelierhub/internal/project/transport/http"
	userrepository "atelierhub/internal/user/repository"
	userservice "atelierhub/internal/user/service"
	userhttp "atelierhub/internal/user/transport/http"
	"atelierhub/pkg/db"
	"atelierhub/pkg/middleware"
)

var server *http.Server

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("connected to postgres")

	catalog := billing.NewCatalog(billing.CatalogOverrides{
		Currency:        cfg.Currency,
		PremiumPrice:    cfg.PremiumPriceOverride,
		EnterprisePrice: cfg.EnterprisePriceOverride,
	})

	// Payment providers: every configured provider accepts webhooks, the
	// one named by PAYMENT_PROVIDER initiates checkouts.
	providers := make(map[string]payment.Provider)
	if cfg.StripeAPIKey != "" {
		providers["stripe"] = payment.NewStripeProvider(cfg.StripeAPIKey, cfg.StripeWebhookSecret)
	}
	if cfg.FlutterwaveSecretKey != "" {
		providers["flutterwave"] = payment.NewFlutterwaveProvider(cfg.FlutterwaveSecretKey, cfg.FlutterwaveWebhookKey)
	}
	activeProvider, ok := providers[cfg.PaymentProvider]
	if !ok {
		log.Fatal().Str("provider", cfg.PaymentProvider).Msg("selected payment provider is not configured")
	}

	userRepo := userrepository.NewPostgresUserRepository(database)
	userService := userservice.NewUserService(userRepo)
	userHandler := userhttp.NewHandler(userService, cfg.JWTSecret)

	subRepo := billingrepository.NewSubscriptionRepository(database)
	billingService := billingservice.NewService(catalog, subRepo, userRepo, activeProvider, cfg.PaymentRedirectURL)

	clientRepo := clientrepository.NewPostgresClientRepository(database)
	projectRepo := projectrepository.NewPostgresProjectRepository(database)
	patternRepo := patternrepository.NewPostgresPatternRepository(database)
	invoiceRepo := invoicerepository.NewPostgresInvoiceRepository(database)

	billingService.RegisterUsageCounter(billing.ResourceClients, clientRepo)
	billingService.RegisterUsageCounter(billing.ResourceProjects, projectRepo)
	billingService.RegisterUsageCounter(billing.ResourceAIGenerations, patternRepo)

	clientService := clientservice.NewService(clientRepo, billingService)
	projectService := projectservice.NewService(projectRepo, billingService)
	invoiceService := invoiceservice.NewService(invoiceRepo, billingService, cfg.Currency)
	generator := patternservice.NewHTTPGenerator(cfg.GeneratorBaseURL, cfg.GeneratorAPIKey)
	patternService := patternservice.NewService(patternRepo, billingService, generator)

	billingHandler := billinghttp.NewBillingHandler(billingService)
	webhookHandler := billinghttp.NewWebhookHandler(billingService, providers)
	clientHandler := clienthttp.NewClientHandler(clientService)
	projectHandler := projecthttp.NewProjectHandler(projectService)
	invoiceHandler := invoicehttp.NewInvoiceHandler(invoiceService)
	patternHandler := patternhttp.NewPatternHandler(patternService)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	// Daily billing sweep: flips past-due subscriptions to overdue and
	// downgrades expired trials.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc("17 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := billingService.Sweep(ctx); err != nil {
			log.Error().Err(err).Msg("billing sweep failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule billing sweep")
	}
	sweeper.Start()
	defer sweeper.Stop()

	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://app.atelierhub.io", "http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.ValidateRequest)

	r.Group(func(pub chi.Router) {
		pub.Use(authLimiter.Middleware)
		pub.Post("/auth/register", userHandler.Register)
		pub.Post("/auth/login", userHandler.Login)
	})

	r.Get("/api/subscriptions/plans", billingHandler.ListPlans)
	r.Get("/api/subscriptions/verify", billingHandler.VerifyCallback)
	r.Post("/webhook/{provider}", webhookHandler.Handle)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.JWTAuth(cfg.JWTSecret))

		pr.Get("/auth/me", userHandler.Me)

		pr.Get("/api/subscriptions/me", billingHandler.GetMySubscription)
		pr.Post("/api/subscriptions", billingHandler.Subscribe)
		pr.Post("/api/subscriptions/cancel", billingHandler.Cancel)

		pr.Post("/api/clients", clientHandler.Create)
		pr.Get("/api/clients", clientHandler.List)
		pr.Get("/api/clients/{id}", clientHandler.Get)
		pr.Delete("/api/clients/{id}", clientHandler.Delete)

		pr.Post("/api/projects", projectHandler.Create)
		pr.Get("/api/projects", projectHandler.List)
		pr.Get("/api/projects/{id}", projectHandler.Get)
		pr.Put("/api/projects/{id}/status", projectHandler.UpdateStatus)

		pr.Post("/api/invoices", invoiceHandler.Create)
		pr.Get("/api/invoices", invoiceHandler.List)
		pr.Get("/api/invoices/{id}", invoiceHandler.Get)
		pr.Put("/api/invoices/{id}/status", invoiceHandler.UpdateStatus)

		pr.Post("/api/patterns/generate", patternHandler.Generate)
		pr.Get("/api/patterns", patternHandler.List)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Group(func(mr chi.Router) {
		mr.Use(middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPassword))
		mr.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	})

	server = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	log.Info().Str("addr", cfg.ListenAddr).Msg("server running")

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Info().Msg("shutdown signal received")
		shutdownServer()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}
}

func shutdownServer() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	log.Info().Msg("server stopped")
}
