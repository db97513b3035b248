package fetcher

import (
	"context"
	"math/rand"
	"time"
)

// Sleep blocks for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RandomDelay returns a random duration in [min, max].
func RandomDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}

// Pauser produces the randomized pause taken between network fetches.
type Pauser struct {
	min, max time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewPauser creates a pauser drawing delays from [min, max].
func NewPauser(min, max time.Duration) *Pauser {
	return &Pauser{min: min, max: max, sleep: Sleep}
}

// Pause sleeps for a random delay in the configured range.
func (p *Pauser) Pause(ctx context.Context) error {
	return p.sleep(ctx, RandomDelay(p.min, p.max))
}
