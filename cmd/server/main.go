// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

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

	"github.com/tomtom215/shipwatch/internal/api"
	"github.com/tomtom215/shipwatch/internal/auth"
	"github.com/tomtom215/shipwatch/internal/cache"
	"github.com/tomtom215/shipwatch/internal/config"
	"github.com/tomtom215/shipwatch/internal/database"
	"github.com/tomtom215/shipwatch/internal/detection"
	"github.com/tomtom215/shipwatch/internal/ingest"
	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/notify"
	"github.com/tomtom215/shipwatch/internal/replay"
	"github.com/tomtom215/shipwatch/internal/retention"
	"github.com/tomtom215/shipwatch/internal/supervisor"
	"github.com/tomtom215/shipwatch/internal/supervisor/services"
	ws "github.com/tomtom215/shipwatch/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Service:   "shipwatch",
		Version:   api.Version,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Shipwatch stopped with error")
	}
}

//nolint:gocyclo // Sequential setup steps
func run(cfg *config.Config) error {
	logging.Info().
		Str("version", api.Version).
		Str("transport", cfg.Transport.Kind).
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("replay", cfg.Replay.Enabled).
		Msg("Starting Shipwatch with supervisor tree")

	logSecurityWarnings(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// === IN-MEMORY STATE ===

	positions := cache.NewPositionCache(cfg.Rules.CacheShards, cfg.Rules.GridCellKm)
	registry := cache.NewVesselRegistry()
	engine := detection.NewRuleEngine(registry, positions, detection.RuleConfig{
		ProximityMeters: cfg.Rules.ProximityMeters,
		CPAMeters:       cfg.Rules.CPAMeters,
		LookAhead:       cfg.Rules.LookAhead,
		StaleAfter:      cfg.Rules.StaleAfter,
	})
	watchers := notify.NewWatchList()

	if _, err := rehydrate(ctx, db, positions, engine, watchers); err != nil {
		return err
	}
	if _, err := loadRegistry(ctx, cfg.Replay.RegistryPath, db, registry); err != nil {
		return fmt.Errorf("load static registry: %w", err)
	}

	speed, err := replay.NewSpeedControl(cfg.Replay.SpeedFactor)
	if err != nil {
		return err
	}

	// === NOTIFICATION ===

	hub := ws.NewHub(cfg.Notify.HubQueueSize)

	var forwarder *notify.WebhookForwarder
	if cfg.Notify.WebhookURL != "" {
		forwarder, err = notify.NewWebhookForwarder(notify.WebhookConfig{
			URL:           cfg.Notify.WebhookURL,
			AuthHeader:    cfg.Notify.WebhookAuthHeader,
			Timeout:       cfg.Notify.WebhookTimeout,
			RatePerSecond: cfg.Notify.WebhookRatePerSecond,
			Burst:         cfg.Notify.WebhookBurst,
			QueueSize:     cfg.Notify.WebhookQueueSize,
		})
		if err != nil {
			return fmt.Errorf("create webhook forwarder: %w", err)
		}
		logging.Info().Msg("Webhook forwarding enabled")
	}

	var notifier *notify.Notifier
	if forwarder != nil {
		notifier = notify.NewNotifier(hub, watchers, forwarder)
	} else {
		notifier = notify.NewNotifier(hub, watchers, nil)
	}

	// === INGESTION ===

	worker := ingest.NewWorker(ingest.Deps{
		Store:          db,
		Cache:          positions,
		Rules:          engine,
		Notifier:       notifier,
		Vessels:        registry,
		PersistTimeout: cfg.Transport.PersistTimeout,
	})

	transport, err := InitTransport(cfg, worker.Handle)
	if err != nil {
		return fmt.Errorf("initialize transport: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := transport.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing transport")
		}
	}()

	var source *replay.Source
	if cfg.Replay.Enabled {
		// An unreadable replay file is fatal at startup. Later open failures
		// (loop mode) are retried by the supervisor.
		f, err := os.Open(cfg.Replay.Path)
		if err != nil {
			return fmt.Errorf("%w: %w", replay.ErrSourceUnavailable, err)
		}
		_ = f.Close()

		checkpoints, err := replay.OpenCheckpointStore(cfg.Replay.CheckpointDir, cfg.Replay.CheckpointDir == "")
		if err != nil {
			return err
		}
		defer func() {
			if err := checkpoints.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing checkpoint store")
			}
		}()

		source = replay.NewSource(replay.SourceConfig{
			Path:            cfg.Replay.Path,
			Resume:          cfg.Replay.Resume,
			Loop:            cfg.Replay.Loop,
			CheckpointEvery: cfg.Replay.CheckpointEvery,
		}, speed, transport.Positions, replay.WithCheckpointStore(checkpoints))
	}

	sweeper, err := retention.NewSweeper(db, retention.Config{
		Interval: cfg.Retention.Interval,
		Window:   cfg.Retention.Window,
	})
	if err != nil {
		return err
	}

	// === HTTP ===

	deps := api.Deps{
		Speed:          speed,
		Zones:          db,
		Rules:          engine,
		Watches:        db,
		Watchers:       watchers,
		History:        db,
		Positions:      positions,
		Vessels:        registry,
		Hub:            hub,
		Worker:         worker,
		Engine:         engine,
		Notifier:       notifier,
		Retention:      sweeper,
		Transport:      transport.Router,
		TransportKind:  transport.Kind,
		AllowedOrigins: cfg.Security.CORSOrigins,
	}
	// Interface fields stay nil when the component is off.
	if source != nil {
		deps.Replay = source
	}
	if forwarder != nil {
		deps.Webhook = forwarder
	}
	handler := api.NewHandler(deps)

	var jwtManager *auth.JWTManager
	if cfg.Security.AuthMode == auth.ModeJWT {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			return fmt.Errorf("create JWT manager: %w", err)
		}
	}
	authMiddleware := auth.NewMiddleware(cfg.Security.AuthMode, jwtManager)

	chiMw := api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security))
	router := api.NewRouter(handler, authMiddleware, chiMw)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(sweeper)

	if transport.Server != nil {
		tree.AddMessagingService(services.NewNATSServerService(transport.Server, 10*time.Second))
	}
	tree.AddMessagingService(hub)
	tree.AddMessagingService(services.NewRunOnceService("transport-router", transport.Router.Run))
	if forwarder != nil {
		tree.AddMessagingService(forwarder)
	}
	if source != nil {
		// The memory transport drops messages published before the
		// consumer subscribes.
		tree.AddMessagingService(services.NewRunOnceService("replay-source", source.Run,
			services.WaitFor(transport.Router.Running()),
			services.RestartOnError(),
		))
	}

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Shipwatch stopped gracefully")
	return nil
}

// logSecurityWarnings prints banners for settings that are unsafe outside
// development.
func logSecurityWarnings(cfg *config.Config) {
	if cfg.Security.AuthMode == auth.ModeNone {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (AUTH_MODE=none)")
		logging.Warn().Msg("  Subscriber identity is taken from the X-Subscriber-ID header.")
		logging.Warn().Msg("  Any client can read any subscriber's private notifications.")
		logging.Warn().Msg("============================================================")
	}
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: CORS allows any origin (CORS_ORIGINS=*)")
		logging.Warn().Msg("  Set CORS_ORIGINS to the admin UI origin(s).")
		logging.Warn().Msg("============================================================")
	}
}
