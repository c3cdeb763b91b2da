package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/shopfront-backend/pkg/config"
	"github.com/angelmondragon/shopfront-backend/pkg/db"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
)

// MaybeRunDev brings the schema up to date on boot, only in dev with
// auto-migrate enabled. SQLite gets the mirrored schema; Postgres runs the
// embedded goose set.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if client == nil {
		return fmt.Errorf("auto-migrate needs a database client")
	}

	if cfg.FeatureFlags.UseSQLite {
		logg.Info(logg.WithField(ctx, "dialect", "sqlite"), "migrate.sqlite_schema")
		return ApplySQLite(ctx, client.DB())
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("unwrap sql.DB: %w", err)
	}
	source, err := Source("")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	runner, err := NewRunner(sqlDB, source, logg)
	if err != nil {
		return err
	}

	ctx = logg.WithField(ctx, "dialect", "postgres")
	logg.Info(ctx, "migrate.auto_up")
	return runner.Up(ctx)
}
