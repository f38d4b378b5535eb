package price

import (
	"context"
	"time"

	"market-monitor-bot/internal/types"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Retrying retries unavailable prices with exponential backoff
type Retrying struct {
	Source  Source
	Retries int
	Min     time.Duration
	Max     time.Duration
}

// WithRetry wraps src so that each fetch is tried up to retries+1 times.
// With retries <= 0 src is returned unchanged.
func WithRetry(src Source, retries int) Source {
	if retries <= 0 {
		return src
	}
	return &Retrying{
		Source:  src,
		Retries: retries,
		Min:     200 * time.Millisecond,
		Max:     2 * time.Second,
	}
}

func (r *Retrying) FetchPrice(ctx context.Context, class types.InstrumentClass, instrument, quote string) (float64, error) {
	b := &backoff.Backoff{
		Min:    r.Min,
		Max:    r.Max,
		Factor: 2,
		Jitter: true,
	}

	for {
		p, err := r.Source.FetchPrice(ctx, class, instrument, quote)
		if err == nil || !errors.Is(err, ErrSourceUnavailable) || int(b.Attempt()) >= r.Retries {
			return p, err
		}

		wait := b.Duration()
		log.Debugf("retrying %s %s in %s: %v", class, instrument, wait, err)

		select {
		case <-ctx.Done():
			return 0, errors.Wrap(err, ctx.Err().Error())
		case <-time.After(wait):
		}
	}
}
