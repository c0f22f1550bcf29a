package sqlite

import (
	"context"
	"github.com/myrjola/crimewatch/internal/errors"
	"log/slog"
	"time"
)

// Optimize runs PRAGMA optimize. See https://www.sqlite.org/pragma.html#pragma_optimize.
//
// The web server schedules it hourly.
func (db *Database) Optimize(ctx context.Context) error {
	start := time.Now()
	if _, err := db.ReadWrite.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		return errors.Wrap(err, "optimize database")
	}
	db.logger.LogAttrs(ctx, slog.LevelInfo, "optimized database", slog.Duration("duration", time.Since(start)))
	return nil
}
