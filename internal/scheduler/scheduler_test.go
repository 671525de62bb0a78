package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type countingRecomputer struct {
	runs atomic.Int32
	err  error
}

func (c *countingRecomputer) RecomputeAll(ctx context.Context) error {
	c.runs.Add(1)
	return c.err
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestStart_RunsImmediatelyAndPeriodically(t *testing.T) {
	rec := &countingRecomputer{}
	s := New(rec, 20*time.Millisecond, quietLogger())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for rec.runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := rec.runs.Load(); got < 2 {
		t.Fatalf("runs = %d, want at least 2", got)
	}
}

func TestStart_Disabled(t *testing.T) {
	rec := &countingRecomputer{}
	s := New(rec, 0, quietLogger())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	if rec.runs.Load() != 0 {
		t.Fatal("disabled schedule ran")
	}
}

func TestRunNow(t *testing.T) {
	rec := &countingRecomputer{err: errors.New("boom")}
	s := New(rec, time.Hour, quietLogger())
	s.RunNow(context.Background())
	if rec.runs.Load() != 1 {
		t.Fatalf("runs = %d, want 1", rec.runs.Load())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.RunNow(ctx)
	if rec.runs.Load() != 1 {
		t.Fatal("cancelled context still ran")
	}
}
