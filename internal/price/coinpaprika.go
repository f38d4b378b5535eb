package price

import (
	"context"
	"net/http"
	"strings"

	"github.com/coinpaprika/coinpaprika-api-go-client/v2/coinpaprika"
	"github.com/pkg/errors"
)

// tickerGetter is the part of the coinpaprika tickers service we use
type tickerGetter interface {
	GetByID(id string, options *coinpaprika.TickersOptions) (*coinpaprika.Ticker, error)
}

// CoinPaprika reads prices through the coinpaprika API client.
// Asset ids use the coinpaprika form, e.g. "btc-bitcoin".
type CoinPaprika struct {
	httpClient *http.Client
	tickers    tickerGetter
}

// NewCoinPaprika creates a crypto provider, using the pro API when apiProKey is set
func NewCoinPaprika(apiProKey string) *CoinPaprika {
	httpClient := defaultHTTPClient()

	var opts []coinpaprika.ClientOptions
	if apiProKey != "" {
		opts = append(opts, coinpaprika.WithAPIKey(apiProKey))
	}
	client := coinpaprika.NewClient(httpClient, opts...)
	return &CoinPaprika{httpClient: httpClient, tickers: &client.Tickers}
}

type tickerResult struct {
	ticker *coinpaprika.Ticker
	err    error
}

// Price returns the price of asset in quote
func (c *CoinPaprika) Price(ctx context.Context, asset, quote string) (float64, error) {
	quote = strings.ToUpper(quote)

	// the client has no context support, so give up waiting on cancellation.
	// The http client timeout bounds the abandoned request.
	done := make(chan tickerResult, 1)
	go func() {
		t, err := c.tickers.GetByID(asset, &coinpaprika.TickersOptions{Quotes: quote})
		done <- tickerResult{ticker: t, err: err}
	}()

	var res tickerResult
	select {
	case <-ctx.Done():
		return 0, errors.Wrapf(ErrSourceUnavailable, "coinpaprika ticker %s: %v", asset, ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		return 0, errors.Wrapf(ErrSourceUnavailable, "coinpaprika ticker %s: %v", asset, res.err)
	}
	if res.ticker == nil {
		return 0, errors.Wrapf(ErrSourceUnavailable, "coinpaprika ticker %s not found", asset)
	}

	q, ok := res.ticker.Quotes[quote]
	if !ok || q.Price == nil || !validPrice(*q.Price) {
		return 0, errors.Wrapf(ErrSourceUnavailable, "coinpaprika ticker %s has no %s quote", asset, quote)
	}
	return *q.Price, nil
}
