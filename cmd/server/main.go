package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/evac-response/internal/adapter/callstore"
	"github.com/couchcryptid/evac-response/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/evac-response/internal/adapter/kafka"
	"github.com/couchcryptid/evac-response/internal/adapter/profilestore"
	"github.com/couchcryptid/evac-response/internal/adapter/telephony"
	"github.com/couchcryptid/evac-response/internal/adapter/tomtom"
	"github.com/couchcryptid/evac-response/internal/config"
	"github.com/couchcryptid/evac-response/internal/domain"
	"github.com/couchcryptid/evac-response/internal/evac"
	"github.com/couchcryptid/evac-response/internal/observability"
	"github.com/couchcryptid/evac-response/internal/sos"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	profiles, err := profilestore.Open(cfg.SQLitePath)
	if err != nil {
		logger.Error("failed to open profile store", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer profiles.Close()

	// Call-context store: Redis when configured, in-process otherwise.
	var calls domain.ContextStore
	var redisStore *callstore.RedisStore
	if cfg.RedisAddr != "" {
		redisStore, err = callstore.NewRedisStore(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		calls = redisStore
		logger.Info("redis call store enabled", "addr", cfg.RedisAddr)
	} else {
		calls = callstore.NewMemoryStore()
	}

	// Routing, geocoding, and shelter search (feature-flagged via
	// TOMTOM_ENABLED / TOMTOM_KEY).
	var (
		geocoder domain.Geocoder
		router   domain.Router
		places   domain.PlacesSearcher
	)
	if cfg.TomTomEnabled {
		client := tomtom.NewClient(cfg.TomTomKey, cfg.TomTomTimeout, metrics, logger)
		geocoder = tomtom.NewCachedGeocoder(client, cfg.GeocodeCacheSize, metrics)
		router = client
		places = client
		logger.Info("tomtom routing enabled", "cache_size", cfg.GeocodeCacheSize, "timeout", cfg.TomTomTimeout)
	} else {
		logger.Info("tomtom routing disabled, serving bundled catalog with distance estimates")
	}

	var dialer sos.Dialer
	if cfg.TelephonyEnabled() {
		statusCallback := ""
		if cfg.PublicBaseURL != "" {
			statusCallback = telephony.StatusCallbackURL(cfg.PublicBaseURL)
		}
		dialer = telephony.NewClient(cfg.TelephonyAccountSID, cfg.TelephonyAuthToken, cfg.TelephonyFromNumber, statusCallback, logger)
		logger.Info("telephony enabled", "target", cfg.TargetNumber, "ivr", cfg.PublicBaseURL != "")
	} else {
		logger.Info("telephony disabled")
	}

	publisher := kafkaadapter.NewPublisher(cfg, logger)

	coordinator := sos.NewCoordinator(cfg, profiles, calls, dialer, publisher, logger, metrics)
	orchestrator := evac.NewOrchestrator(router, logger, metrics)
	planner := evac.NewPlanner(geocoder, places, orchestrator, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, coordinator, planner, profiles, profiles, publisher, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka publisher close error", "error", err)
	}
	if redisStore != nil {
		if err := redisStore.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
