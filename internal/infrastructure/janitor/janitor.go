package janitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/codedrop/relay/internal/infrastructure/metrics"
)

// Sweeper removes expired state from a backend that lacks native expiry.
type Sweeper interface {
	Name() string
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// Janitor periodically runs every registered sweeper.
type Janitor struct {
	sweepers  []Sweeper
	interval  time.Duration
	now       func() time.Time
	log       zerolog.Logger
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a janitor. Sweepers may be empty, in which case Start is a no-op.
func New(interval time.Duration, log zerolog.Logger, sweepers ...Sweeper) *Janitor {
	return &Janitor{
		sweepers: sweepers,
		interval: interval,
		now:      time.Now,
		log:      log.With().Str("component", "janitor").Logger(),
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop in background.
// Safe to call multiple times - only the first call starts the janitor.
func (j *Janitor) Start(ctx context.Context) {
	if len(j.sweepers) == 0 {
		return
	}
	j.startOnce.Do(func() {
		j.wg.Add(1)
		go j.run(ctx)
		j.log.Info().Dur("interval", j.interval).Int("sweepers", len(j.sweepers)).Msg("janitor started")
	})
}

// Stop gracefully shuts down the janitor.
// Safe to call multiple times - only the first call stops the janitor.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.done)
		j.wg.Wait()
		j.log.Info().Msg("janitor stopped")
	})
}

func (j *Janitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.done:
			return
		case <-ticker.C:
			j.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs every sweeper a single time and returns the total removed.
func (j *Janitor) SweepOnce(ctx context.Context) int {
	now := j.now()
	total := 0
	for _, sweeper := range j.sweepers {
		removed, err := sweeper.Sweep(ctx, now)
		if err != nil {
			j.log.Warn().Err(err).Str("sweeper", sweeper.Name()).Msg("sweep failed")
		}
		if removed > 0 {
			metrics.RecordSwept(sweeper.Name(), removed)
			j.log.Info().Str("sweeper", sweeper.Name()).Int("removed", removed).Msg("expired entries swept")
		}
		total += removed
	}
	return total
}
