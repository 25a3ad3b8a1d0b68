package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/vasiliy-maslov/technova/internal/assistant"
	"github.com/vasiliy-maslov/technova/internal/auth"
	"github.com/vasiliy-maslov/technova/internal/cart"
	"github.com/vasiliy-maslov/technova/internal/catalog"
	"github.com/vasiliy-maslov/technova/internal/checkout"
	"github.com/vasiliy-maslov/technova/internal/config"
	"github.com/vasiliy-maslov/technova/internal/customer"
	"github.com/vasiliy-maslov/technova/internal/db"
	"github.com/vasiliy-maslov/technova/internal/favorites"
	"github.com/vasiliy-maslov/technova/internal/filestore"
	handler "github.com/vasiliy-maslov/technova/internal/handler/http"
	"github.com/vasiliy-maslov/technova/internal/inventory"
	"github.com/vasiliy-maslov/technova/internal/kvstore"
	"github.com/vasiliy-maslov/technova/internal/order"
	"github.com/vasiliy-maslov/technova/internal/preferences"
	"github.com/vasiliy-maslov/technova/internal/repair"
	"github.com/vasiliy-maslov/technova/internal/retention"
	"github.com/vasiliy-maslov/technova/internal/staff"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogger(cfg)
	log.Info().Msg("TechNova starting...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pg.Close()

	if err := pg.ApplyMigrations(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	mongo, err := db.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongo.Close(closeCtx)
	}()

	bucket, err := mongo.Bucket()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open image bucket")
	}
	files := filestore.NewGridFSStore(bucket)

	store := kvstore.NewPostgresBackend(pg.Pool)

	products := catalog.NewRepository(mongo.Database)
	loader := catalog.NewLoader(products)
	manager := catalog.NewManager(products, files)

	orderMirror := order.NewMongoStore(mongo.Database)
	cartSvc := cart.NewService(store, cart.NewMongoStore(mongo.Database))
	orderSvc := order.NewService(store)
	checkoutSvc := checkout.NewService(store, cartSvc, orderSvc, orderMirror)
	favoritesSvc := favorites.NewService(store, favorites.NewMongoStore(mongo.Database))

	authSvc := auth.NewService(
		auth.NewRepository(pg.Pool),
		auth.LogMailer{},
		auth.NewLimiter(cfg.Auth.MaxFailedAttempts, cfg.Auth.FailedAttemptsTTL),
		auth.Options{
			SessionTTL:        cfg.Auth.SessionTTL,
			ResetTTL:          cfg.Auth.PasswordResetTTL,
			MinPasswordLength: cfg.Auth.MinPasswordLength,
		},
	)
	customerSvc := customer.NewService(
		customer.NewProfileRepository(mongo.Database),
		customer.NewAddressRepository(mongo.Database),
		orderMirror,
		favoritesSvc,
		loader,
	)

	staffSvc := staff.NewService(staff.NewRepository(pg.SQL), store, auth.NewLimiter(cfg.Auth.MaxFailedAttempts, cfg.Auth.FailedAttemptsTTL), staff.Options{
		SessionTTL: cfg.Auth.StaffSessionTTL,
		Grace:      time.Duration(cfg.Auth.AttendanceGraceMin) * time.Minute,
	})
	if err := staffSvc.Bootstrap(ctx, cfg.Staff.AdminName, cfg.Staff.AdminPIN, cfg.Staff.AdminStore); err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap staff directory")
	}

	assistantSvc, err := assistant.NewService(ctx, assistant.Config{
		APIKey:        cfg.Assistant.APIKey,
		BaseURL:       cfg.Assistant.BaseURL,
		APIVersion:    cfg.Assistant.APIVersion,
		ChatModel:     cfg.Assistant.ChatModel,
		ThinkingModel: cfg.Assistant.ThinkingModel,
		ImageModel:    cfg.Assistant.ImageModel,
		Timeout:       cfg.Assistant.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create assistant client")
	}
	if cfg.Assistant.APIKey == "" {
		log.Warn().Msg("ASSISTANT_API_KEY is not set, assistant replies are disabled")
	}

	sweeper, err := retention.Schedule(cfg.Retention.Schedule, retention.NewJob(store, authSvc, cfg.Retention.MaxIdle))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule retention sweep")
	}
	sweeper.Start()
	defer func() { <-sweeper.Stop().Done() }()

	router := handler.NewRouter(handler.Handlers{
		Products:    handler.NewProductHandler(loader, manager, files),
		Cart:        handler.NewCartHandler(cartSvc, loader),
		Checkout:    handler.NewCheckoutHandler(checkoutSvc),
		Favorites:   handler.NewFavoritesHandler(favoritesSvc),
		Auth:        handler.NewAuthHandler(authSvc, customerSvc, favoritesSvc),
		Account:     handler.NewAccountHandler(customerSvc),
		Repairs:     handler.NewRepairHandler(repair.NewService(store)),
		Inventory:   handler.NewInventoryHandler(inventory.NewService(store)),
		Staff:       handler.NewStaffHandler(staffSvc),
		Orders:      handler.NewOrderHandler(orderSvc),
		Preferences: handler.NewPreferencesHandler(preferences.NewService(store)),
		Assistant:   handler.NewAssistantHandler(assistantSvc),
	}, authSvc, staffSvc)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
	}

	log.Info().Msg("TechNova stopped gracefully.")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", cfg.App.Name).Logger()
}
