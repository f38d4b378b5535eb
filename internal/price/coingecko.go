package price

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// CoinGecko reads spot prices from the CoinGecko simple price endpoint
type CoinGecko struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewCoinGecko creates a crypto provider. An empty baseURL uses the public API.
func NewCoinGecko(baseURL string) *CoinGecko {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}
	return &CoinGecko{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: defaultHTTPClient(),
	}
}

// Price returns the price of asset (a CoinGecko id such as "bitcoin") in quote
func (c *CoinGecko) Price(ctx context.Context, asset, quote string) (float64, error) {
	asset, quote = strings.ToLower(asset), strings.ToLower(quote)

	q := url.Values{}
	q.Set("ids", asset)
	q.Set("vs_currencies", quote)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return 0, errors.Wrap(err, "could not build crypto request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, errors.Wrapf(ErrSourceUnavailable, "crypto request %s/%s: %v", asset, quote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return 0, errors.Wrapf(ErrSourceUnavailable, "crypto request %s/%s: status %d", asset, quote, resp.StatusCode)
	}

	var data map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, errors.Wrapf(ErrSourceUnavailable, "crypto response %s/%s: %v", asset, quote, err)
	}

	p, ok := data[asset][quote]
	if !ok || !validPrice(p) {
		return 0, errors.Wrapf(ErrSourceUnavailable, "crypto response has no %s price for %s", quote, asset)
	}
	return p, nil
}
