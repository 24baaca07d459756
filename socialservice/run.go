package socialservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/telecomnet/telecom-social/internal/api"
	"github.com/telecomnet/telecom-social/internal/auth"
	"github.com/telecomnet/telecom-social/internal/config"
	"github.com/telecomnet/telecom-social/internal/factory"
	"github.com/telecomnet/telecom-social/internal/health"
	"github.com/telecomnet/telecom-social/internal/localstate"
	"github.com/telecomnet/telecom-social/internal/logger"
	"github.com/telecomnet/telecom-social/internal/retry"
	"github.com/telecomnet/telecom-social/internal/services"
	"github.com/telecomnet/telecom-social/internal/store"
)

// Options override values loaded from the environment.
type Options struct {
	BuildTarget string
}

// Run starts the social service HTTP server and blocks until shutdown or error.
func Run(opts Options) error {
	cfg, err := config.New()
	if err != nil {
		boot := logger.New("social-service")
		boot.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	if opts.BuildTarget != "" && opts.BuildTarget != cfg.BuildTarget {
		cfg.BuildTarget = opts.BuildTarget
		cfg.DBDriver = "auto"
		if err := cfg.ResolveDefaults(); err != nil {
			return fmt.Errorf("invalid build-target override: %w", err)
		}
	}

	log := logger.NewWithWriter(os.Stdout, "social-service", logger.ParseLevel(cfg.LogLevel))
	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("auth_mode", cfg.AuthMode).
		Int("http_port", cfg.HTTPPort).
		Msg("Social service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	db, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("store close failed")
		}
	}()

	authn, err := auth.NewAuthenticator(cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Authenticator unavailable")
		return err
	}

	deps := buildServices(db, cfg, log)
	if cfg.BuildTarget == "local" {
		if err := localstate.EnsureDefaultUser(ctx, deps.Users); err != nil {
			log.Error().Stack().Err(err).Msg("default user bootstrap failed")
			return err
		}
	}

	// Start health checkers and bind service health
	svcHealth := startHealthCheckers(ctx, cfg, log, db)
	deps.Auth = authn
	deps.Healthy = svcHealth.IsHealthy
	deps.Components = svcHealth.Components
	deps.MetricsEnabled = cfg.MetricsEnabled
	router := buildRouter(deps)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildServices constructs the domain services over one store.
func buildServices(db store.DB, cfg *config.Config, log zerolog.Logger) api.Deps {
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.StorageMaxAttempts
	policy.BaseInterval = cfg.RetryBase()
	opts := []services.Option{services.WithRetryPolicy(policy)}

	profiles := services.NewProfileService(db, log, opts...)
	connections := services.NewConnectionService(db, log, opts...)
	return api.Deps{
		Users:         services.NewUserService(db, profiles, log, opts...),
		Profiles:      profiles,
		Connections:   connections,
		Conversations: services.NewConversationService(db, log, cfg.MaxMessageLength, opts...),
		Banking:       services.NewBankingService(db, log, opts...),
		Posts:         services.NewPostService(db, connections, log, opts...),
		Notifications: services.NewNotificationService(db, log, opts...),
	}
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(deps api.Deps) *mux.Router {
	return api.NewRouter(deps)
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	svcHealth.StartAll(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
