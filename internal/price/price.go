package price

import (
	"context"
	"math"
	"net/http"
	"time"

	"market-monitor-bot/internal/types"

	"github.com/pkg/errors"
)

// ErrSourceUnavailable is returned when a provider gives no usable price
var ErrSourceUnavailable = errors.New("price source unavailable")

// Source fetches the current price of one instrument
type Source interface {
	FetchPrice(ctx context.Context, class types.InstrumentClass, instrument, quote string) (float64, error)
}

// ForexProvider returns the realtime rate for a currency pair
type ForexProvider interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// CryptoProvider returns the price of an asset in a quote currency
type CryptoProvider interface {
	Price(ctx context.Context, asset, quote string) (float64, error)
}

// Client routes a fetch to the provider serving the instrument class
type Client struct {
	Forex  ForexProvider
	Crypto CryptoProvider
}

// NewClient creates a Source backed by the given providers
func NewClient(forex ForexProvider, crypto CryptoProvider) *Client {
	return &Client{Forex: forex, Crypto: crypto}
}

// FetchPrice issues one provider request. For forex the quote is taken
// from the pair itself and the quote argument is ignored.
func (c *Client) FetchPrice(ctx context.Context, class types.InstrumentClass, instrument, quote string) (float64, error) {
	switch class {
	case types.Forex:
		if c.Forex == nil {
			return 0, errors.Wrap(ErrSourceUnavailable, "no forex provider configured")
		}
		from, to, ok := types.SplitPair(instrument)
		if !ok {
			return 0, errors.Wrapf(ErrSourceUnavailable, "invalid currency pair %q", instrument)
		}
		return c.Forex.Rate(ctx, from, to)
	case types.Crypto:
		if c.Crypto == nil {
			return 0, errors.Wrap(ErrSourceUnavailable, "no crypto provider configured")
		}
		return c.Crypto.Price(ctx, instrument, quote)
	}
	return 0, errors.Wrapf(ErrSourceUnavailable, "unsupported instrument class %s", class)
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}
