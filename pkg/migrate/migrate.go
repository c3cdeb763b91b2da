package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/angelmondragon/shopfront-backend/pkg/logger"
	"github.com/pressly/goose/v3"
)

const (
	DefaultDir  = "pkg/migrate/migrations"
	embeddedDir = "migrations"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Source resolves the migration set: dir on disk when given, the files
// compiled into the binary otherwise.
func Source(dir string) (fs.FS, error) {
	if dir != "" {
		return os.DirFS(dir), nil
	}
	return fs.Sub(embedded, embeddedDir)
}

// Runner applies goose migrations against Postgres.
type Runner struct {
	provider *goose.Provider
	logg     *logger.Logger
}

func NewRunner(db *sql.DB, source fs.FS, logg *logger.Logger) (*Runner, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, source)
	if err != nil {
		return nil, fmt.Errorf("init goose provider: %w", err)
	}
	return &Runner{provider: provider, logg: logg}, nil
}

func (r *Runner) Up(ctx context.Context) error {
	results, err := r.provider.Up(ctx)
	r.report(ctx, results...)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration only.
func (r *Runner) Down(ctx context.Context) error {
	result, err := r.provider.Down(ctx)
	r.report(ctx, result)
	if err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

// To moves the schema up or down until version is the current one.
func (r *Runner) To(ctx context.Context, version string) error {
	target, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return fmt.Errorf("version %q is not a YYYYMMDDHHMMSS number: %w", version, err)
	}
	current, err := r.provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("read db version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case target > current:
		results, err = r.provider.UpTo(ctx, target)
	case target < current:
		results, err = r.provider.DownTo(ctx, target)
	default:
		return nil
	}
	r.report(ctx, results...)
	if err != nil {
		return fmt.Errorf("goose to %d: %w", target, err)
	}
	return nil
}

func (r *Runner) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	statuses, err := r.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose status: %w", err)
	}
	return statuses, nil
}

func (r *Runner) report(ctx context.Context, results ...*goose.MigrationResult) {
	if r.logg == nil {
		return
	}
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		r.logg.InfoFields(ctx, "migration.applied", map[string]any{
			"version":     res.Source.Version,
			"direction":   res.Direction,
			"duration_ms": res.Duration.Milliseconds(),
		})
	}
}
