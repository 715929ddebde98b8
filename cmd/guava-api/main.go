// README: Entry point; loads config, wires services, starts the HTTP server and session janitors.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"guava/internal/backend"
	"guava/internal/config"
	httptransport "guava/internal/http"
	"guava/internal/infra"
	"guava/internal/maps"
	"guava/internal/modules/places"
	"guava/internal/modules/pricing"
	"guava/internal/modules/tiereditor"
	"guava/internal/modules/trip"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.IsProduction(), cfg.Log.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		logger.Fatal("GUAVA_FIREBASE_PROJECT_ID is required")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		logger.Fatal("firebase init", zap.Error(err))
	}

	routes, err := maps.NewRouteService(cfg.Maps.APIKey, cfg.Maps.Region)
	if err != nil {
		logger.Fatal("directions client", zap.Error(err))
	}
	placesProvider, err := maps.NewPlacesService(cfg.Maps.APIKey, cfg.Maps.Country)
	if err != nil {
		logger.Fatal("places client", zap.Error(err))
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()

	// The tier host is optional: a console pointed at a remote pricing backend runs without Postgres.
	var tierSvc *pricing.Service
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			logger.Fatal("postgres", zap.Error(err))
		}
		defer dbPool.Close()
		tierSvc = pricing.NewService(pricing.NewStore(dbPool), logger.Named("tiers"))
	}

	if cfg.Backend.TimeoutOutsideRecommended() {
		logger.Warn("backend timeout outside the recommended 8-10s", zap.Duration("timeout", cfg.Backend.Timeout()))
	}
	pricingBackend := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Token, cfg.Backend.Timeout())
	tripSvc := trip.NewService(routes, pricingBackend, cfg.Backend.Timeout(), logger.Named("trip"))
	placesSvc := places.NewService(
		placesProvider,
		places.NewRedisCache(redisClient, cfg.Places.CacheTTL()),
		logger.Named("places"),
	)

	server := httptransport.NewServer(httptransport.ServerDeps{
		Trips:  tripSvc,
		Places: placesSvc,
		Tiers:  tierSvc,
		NewEditor: func() *tiereditor.Editor {
			return tiereditor.New(pricingBackend, logger.Named("tiereditor"))
		},
		Verifier: verifier,
		Logger:   logger,
		HTTP:     cfg.HTTP,
		Debounce: cfg.Places.Debounce(),
	})

	go server.RunJanitors(ctx, cfg.Session.SweepEvery(), cfg.Session.MaxIdle())

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", cfg.HTTP.Addr), zap.Bool("tier_host", tierSvc != nil))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server", zap.Error(err))
	}
}
