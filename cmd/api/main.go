package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avolkov/orderflow-backend/api/routes"
	"github.com/avolkov/orderflow-backend/internal/auth"
	"github.com/avolkov/orderflow-backend/internal/contacts"
	"github.com/avolkov/orderflow-backend/internal/importer"
	"github.com/avolkov/orderflow-backend/internal/orders"
	"github.com/avolkov/orderflow-backend/internal/shops"
	"github.com/avolkov/orderflow-backend/internal/users"
	"github.com/avolkov/orderflow-backend/pkg/assets"
	"github.com/avolkov/orderflow-backend/pkg/config"
	"github.com/avolkov/orderflow-backend/pkg/db"
	"github.com/avolkov/orderflow-backend/pkg/logger"
	"github.com/avolkov/orderflow-backend/pkg/metrics"
	"github.com/avolkov/orderflow-backend/pkg/migrate"
	"github.com/avolkov/orderflow-backend/pkg/outbox"
	"github.com/avolkov/orderflow-backend/pkg/pubsub"
	"github.com/avolkov/orderflow-backend/pkg/redis"
	"github.com/avolkov/orderflow-backend/pkg/reporting"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var pubsubClient *pubsub.Client
	if cfg.GCP.ProjectID != "" {
		pubsubClient, err = pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub client", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "gcp project id not set, pubsub readiness checks disabled")
	}

	reporter := reporting.New(cfg.Reporting, logg)

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		Outbox:         outboxService,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  users.NewRepository(dbClient.DB()),
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	var deriver assets.Deriver
	if cfg.Assets.BaseURL != "" {
		deriver = assets.NewURLDeriver(cfg.Assets.BaseURL)
	}
	userService, err := users.NewService(users.ServiceParams{
		Repo:           users.NewRepository(dbClient.DB()),
		Deriver:        deriver,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	shopService, err := shops.NewService(shops.ServiceParams{
		Repo: shops.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create shop service", err)
		os.Exit(1)
	}

	importService, err := importer.NewService(importer.ServiceParams{
		DB:      dbClient,
		Fetcher: importer.NewFetcher(cfg.Importer),
		Outbox:  outboxService,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create import service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		DB:     dbClient,
		Repo:   orders.NewRepository(dbClient.DB()),
		Outbox: outboxService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	contactService, err := contacts.NewService(contacts.ServiceParams{
		Repo: contacts.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create contact service", err)
		os.Exit(1)
	}

	params := routes.RouterParams{
		Config:   cfg,
		Logger:   logg,
		Reporter: reporter,

		DB:    dbClient,
		Redis: redisClient,

		HTTPMetrics: httpMetrics,
		Gatherer:    registry,

		AuthService:     authService,
		RegisterService: registerService,
		UserService:     userService,
		ShopService:     shopService,
		ImportService:   importService,
		OrderService:    orderService,
		ContactService:  contactService,
	}
	if pubsubClient != nil {
		params.PubSub = pubsubClient
	}

	port := cfg.App.Port
	if fromEnv := os.Getenv("PORT"); fromEnv != "" {
		port = fromEnv
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: routes.NewRouter(params),
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"port": port,
	})
	logg.Info(ctx, "starting api server")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
