package main

import (
	"context"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/metrics"
	"github.com/myrjola/crimewatch/internal/sqlite"
	"github.com/robfig/cron/v3"
	"log/slog"
	"time"
)

const (
	jobOptimize     = "optimize"
	jobPurgeWizards = "purge-wizards"

	// stuckWizardAge bounds how long a request may hold the wizard busy mark.
	stuckWizardAge = 5 * time.Minute
)

// scheduleJobs starts the periodic database maintenance. The returned function stops the scheduler and waits for
// running jobs to finish.
func (app *application) scheduleJobs(ctx context.Context, db *sqlite.Database, wizardMaxAge time.Duration) (func(), error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))

	if _, err := c.AddFunc("@hourly", func() {
		app.runJob(ctx, jobOptimize, func(ctx context.Context) error {
			return db.Optimize(ctx)
		})
	}); err != nil {
		return nil, errors.Wrap(err, "add optimize job")
	}

	if _, err := c.AddFunc("@every 10m", func() {
		app.runJob(ctx, jobPurgeWizards, func(ctx context.Context) error {
			released, err := app.wizards.ReleaseStuck(ctx, stuckWizardAge)
			if err != nil {
				return err
			}
			purged, err := app.wizards.PurgeStale(ctx, wizardMaxAge)
			if err != nil {
				return err
			}
			app.logger.LogAttrs(ctx, slog.LevelDebug, "wizards cleaned up",
				slog.Int64("released", released), slog.Int64("purged", purged))
			return nil
		})
	}); err != nil {
		return nil, errors.Wrap(err, "add purge job")
	}

	c.Start()
	return func() {
		<-c.Stop().Done()
	}, nil
}

func (app *application) runJob(ctx context.Context, name string, job func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	err := job(ctx)
	app.metrics.JobRuns.WithLabelValues(name, metrics.Result(err)).Inc()
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "job failed", slog.String("job", name), errors.SlogError(err))
	}
}
