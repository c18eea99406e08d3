package sweep_test

import (
	"context"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/realscan/realscan/internal/application/sweep"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (c *countingSweeper) SweepExpired(context.Context) (int64, error) {
	c.calls.Add(1)
	return 0, nil
}

func silentLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestSweeper_RunsImmediatelyOnStart(t *testing.T) {
	codes := &countingSweeper{}
	s := sweep.New(codes, sweep.Config{IntervalHours: 1}, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)

	assert.Eventually(t, func() bool {
		return codes.calls.Load() >= 1
	}, time.Second, 10*time.Millisecond, "first sweep should run on startup, not after the first tick")

	s.Stop()
}

func TestSweeper_StopViaContext(t *testing.T) {
	codes := &countingSweeper{}
	s := sweep.New(codes, sweep.Config{IntervalHours: 1}, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	// Stop must return even though the context, not Stop, ended the loop.
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
}
