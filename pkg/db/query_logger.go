package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/shopfront-backend/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// queryLogger routes GORM statement logs through the service logger. Failed
// and slow statements are warnings; everything else is debug.
type queryLogger struct {
	logg  *logger.Logger
	level gormlogger.LogLevel
}

func newQueryLogger(logg *logger.Logger) gormlogger.Interface {
	if logg == nil {
		return gormlogger.Discard
	}
	return &queryLogger{logg: logg, level: gormlogger.Warn}
}

func (q *queryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *q
	clone.level = level
	return &clone
}

func (q *queryLogger) Info(ctx context.Context, msg string, args ...any) {
	if q.level >= gormlogger.Info {
		q.logg.Debug(ctx, fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Warn(ctx context.Context, msg string, args ...any) {
	if q.level >= gormlogger.Warn {
		q.logg.Warn(ctx, fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Error(ctx context.Context, msg string, args ...any) {
	if q.level >= gormlogger.Error {
		q.logg.Warn(ctx, fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if q.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := elapsed > slowQueryThreshold

	if !failed && !slow && q.level < gormlogger.Info {
		return
	}

	stmt, rows := fc()
	fields := map[string]any{
		"sql":         stmt,
		"rows":        rows,
		"duration_ms": elapsed.Milliseconds(),
	}
	if failed {
		fields["db_error"] = err.Error()
	}
	ctx = q.logg.WithFields(ctx, fields)

	switch {
	case failed:
		q.logg.Warn(ctx, "db.query_failed")
	case slow:
		q.logg.Warn(ctx, "db.slow_query")
	default:
		q.logg.Debug(ctx, "db.query")
	}
}
