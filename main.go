package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/travel-point/api-go/commons"
	"github.com/travel-point/api-go/config"
	"github.com/travel-point/api-go/logger"
	"github.com/travel-point/api-go/metrics"
	"github.com/travel-point/api-go/repository"
	"github.com/travel-point/api-go/routes"
	"github.com/travel-point/api-go/services"
	"go.uber.org/zap"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(settings.Env, settings.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := run(settings, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(settings *config.Settings, log *zap.Logger) error {
	// Initialize database
	db, err := config.InitDB(settings, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	metrics.Register()

	placeRepo := repository.NewPlaceRepository(db, log)
	imageRepo := repository.NewImageCacheRepository(db)
	userRepo := repository.NewUserRepository(db)

	commonsClient := commons.New(commons.Options{
		BaseURL:      settings.CommonsAPIURL,
		UserAgent:    settings.CommonsUserAgent,
		RatePerSec:   settings.CommonsRatePerSec,
		BreakerTrips: settings.CommonsBreakerTrips,
		Logger:       log,
	})
	fetcher := services.NewCachedImageFetcher(imageRepo, commonsClient, settings.ImageCacheTTL)

	bus := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(settings.RefetchBuffer),
	}, logger.NewWatermillAdapter(log))
	refetch := services.NewRefetchQueue(bus, bus, fetcher, settings.RefetchWorkers, log)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go func() {
		if err := refetch.Run(bgCtx); err != nil {
			log.Error("refetch queue stopped", zap.Error(err))
		}
	}()

	enricher := services.NewEnricher(fetcher, settings.ImageFetchTimeout, settings.ImageFetchConcurrency, refetch)
	placeService := services.NewPlaceService(
		placeRepo,
		services.NewStoredInterests(userRepo),
		enricher,
		services.PageLimits{Default: settings.DefaultPageSize, Max: settings.MaxPageSize},
	)

	if settings.Env == "prod" || settings.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	routes.SetupRoutes(r, routes.Dependencies{
		Places:    placeService,
		DB:        sqlDB,
		JWTSecret: settings.JWTSecret,
		Logger:    log,
	})

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", settings.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}

	stopBackground()
	if err := bus.Close(); err != nil {
		log.Warn("close refetch bus", zap.Error(err))
	}

	log.Info("server stopped gracefully")
	return nil
}
