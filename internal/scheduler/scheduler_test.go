package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidate(t *testing.T) {
	for _, spec := range []string{"*/5 * * * *", "@hourly", "@every 10m", "0 9 * * MON-FRI"} {
		if err := Validate(spec); err != nil {
			t.Errorf("Validate(%q): %v", spec, err)
		}
	}
	for _, spec := range []string{"", "every day", "* * *", "61 * * * *"} {
		if err := Validate(spec); err == nil {
			t.Errorf("Validate(%q): want error", spec)
		}
	}
}

func TestRun_InvalidSpecNeverRunsJob(t *testing.T) {
	called := false
	err := Run(context.Background(), "not a cron", quietLogger(), func(context.Context) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("want error for invalid spec")
	}
	if called {
		t.Error("job must not run for an invalid spec")
	}
}

func TestRun_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runs := make(chan struct{}, 4)

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, "@hourly", quietLogger(), func(context.Context) error {
			runs <- struct{}{}
			return errors.New("job errors are logged, not fatal")
		})
	}()

	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
