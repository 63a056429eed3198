// Package scheduler runs a job on a cron schedule until its context ends.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled run. A returned error is logged; later runs still happen.
type Job func(ctx context.Context) error

// Validate reports whether spec is a standard five-field cron expression or a
// descriptor such as @hourly or @every 10m.
func Validate(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return nil
}

// Run calls job once right away and then at every activation of spec, until
// ctx is done. A run that is still going when the next activation comes causes
// that activation to be skipped. Run returns after the last job has finished.
func Run(ctx context.Context, spec string, logger *slog.Logger, job Job) error {
	if err := Validate(spec); err != nil {
		return err
	}
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{log: logger}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	run := func() {
		if err := job(ctx); err != nil {
			logger.Error("scheduler: job failed", "cron", spec, "error", err)
		}
	}
	entryID, err := c.AddFunc(spec, run)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}

	run()
	c.Start()
	logger.Info("scheduler: started", "cron", spec, "next", c.Entry(entryID).Next)

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("scheduler: stopped", "cron", spec)
	return nil
}

// cronLogger routes cron's internal messages to slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
