package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunnerExecutesJobs(t *testing.T) {
	r := NewRunner(8, discardLogger())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		r.Submit("count", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := ran.Load(); got != 5 {
		t.Errorf("ran %d jobs, want 5", got)
	}
}

func TestRunnerSurvivesFailures(t *testing.T) {
	r := NewRunner(8, discardLogger())

	var ran atomic.Int32
	r.Submit("boom", func(ctx context.Context) error {
		return errors.New("job failed")
	})
	r.Submit("after", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if ran.Load() != 1 {
		t.Error("a failed job must not stop the worker")
	}
}

func TestSubmitAfterStopIsDropped(t *testing.T) {
	r := NewRunner(8, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	// Must neither panic nor block.
	r.Submit("late", func(ctx context.Context) error { return nil })

	if err := r.Stop(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
