package maintenance

import (
	"context"
	"log"
	"time"

	"github.com/sternbridge/bullion-quotes/internal/quotes"
)

// Sweeper expires quotes older than the retention window. It shares nothing
// with the request path except the database, so it can run in-process on a
// ticker or as a one-shot invocation from an external scheduler.
type Sweeper struct {
	Quotes    *quotes.Service
	Retention time.Duration
	Interval  time.Duration
}

func NewSweeper(svc *quotes.Service, retention, interval time.Duration) *Sweeper {
	return &Sweeper{Quotes: svc, Retention: retention, Interval: interval}
}

// RunOnce performs a single sweep. Failures are logged, not retried; the
// next scheduled run picks up whatever this one missed. Re-running is
// harmless: expired quotes never match again.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.Retention)
	count, err := s.Quotes.ExpireStale(ctx, cutoff)
	if err != nil {
		log.Printf("sweep: expiry failed: %v", err)
		return 0, err
	}
	log.Printf("sweep: expired %d quote(s) older than %s", count, s.Retention)
	return count, nil
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	_, _ = s.RunOnce(ctx)
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.RunOnce(ctx)
		}
	}
}
