package sweep

import (
	"context"
	"log"
	"time"
)

// CodeSweeper is the slice of the lifecycle service the sweeper needs.
type CodeSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically deactivates expired access codes. It runs as a
// background goroutine independent of request handling and is safe to
// stop via its context or the Stop method. Overlapping with concurrent
// issue/revoke is fine: deactivation is monotonic and idempotent.
type Sweeper struct {
	codes    CodeSweeper
	interval time.Duration
	logger   *log.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// Config holds the parameters for New.
type Config struct {
	// IntervalHours is how often the sweep runs. Defaults to 24.
	IntervalHours int
}

// New creates a sweeper but does not start it. Call Start to begin
// the background loop.
func New(codes CodeSweeper, cfg Config, logger *log.Logger) *Sweeper {
	interval := time.Duration(cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Sweeper{
		codes:    codes,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins the background loop: an immediate sweep on startup,
// then repeats on the configured interval until ctx is cancelled or
// Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
	s.logger.Printf("code sweeper started (interval=%s)", s.interval)
}

// Stop signals the sweeper to exit and waits for it to finish.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.codes.SweepExpired(ctx)
	if err != nil {
		s.logger.Printf("code sweep error: %v", err)
		return
	}
	if n > 0 {
		s.logger.Printf("code sweep: deactivated %d expired access codes", n)
	}
}
