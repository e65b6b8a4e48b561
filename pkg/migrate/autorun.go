package migrate

import (
	"context"
	"fmt"

	"github.com/hovergrid/preflight/pkg/config"
	"github.com/hovergrid/preflight/pkg/db"
	"github.com/hovergrid/preflight/pkg/logger"
)

// MaybeRunDev executes migrations automatically before a check run when the
// toolkit is in dev mode and the auto-migrate flag is set. Production runs
// never migrate implicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.App.AutoMigrate {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "running goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
