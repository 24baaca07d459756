package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/telecomnet/telecom-social/internal/config"
	"github.com/telecomnet/telecom-social/internal/localstate"
	storepkg "github.com/telecomnet/telecom-social/internal/store"
	storepg "github.com/telecomnet/telecom-social/internal/store/postgres"
	storesqlite "github.com/telecomnet/telecom-social/internal/store/sqlite"
)

// NewStore opens the store selected by cfg.DBDriver and applies its schema
// within BootstrapTimeoutSeconds.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.DB, error) {
	bootstrapTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
	if bootstrapTimeout <= 0 {
		bootstrapTimeout = 5 * time.Second
	}
	bootstrapCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
	defer cancel()

	switch cfg.DBDriver {
	case config.DriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("SOCIAL_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Bootstrap(bootstrapCtx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres bootstrap: %w", err)
		}
		log.Info().Str("driver", cfg.DBDriver).Msg("store ready")
		return db, nil

	case config.DriverSQLite:
		path, err := localstate.SQLitePath(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		db, err := storesqlite.New(bootstrapCtx, path)
		if err != nil {
			return nil, fmt.Errorf("sqlite bootstrap: %w", err)
		}
		log.Info().Str("driver", cfg.DBDriver).Str("path", path).Msg("store ready")
		return db, nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
