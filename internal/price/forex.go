package price

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	realtimeRateKey = "Realtime Currency Exchange Rate"
	exchangeRateKey = "5. Exchange Rate"
)

// AlphaVantage reads realtime exchange rates from the Alpha Vantage API
type AlphaVantage struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewAlphaVantage creates a forex provider. An empty baseURL uses the public API.
func NewAlphaVantage(baseURL, apiKey string) *AlphaVantage {
	if baseURL == "" {
		baseURL = "https://www.alphavantage.co"
	}
	return &AlphaVantage{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: defaultHTTPClient(),
	}
}

// Rate returns the realtime rate from one currency to another
func (a *AlphaVantage) Rate(ctx context.Context, from, to string) (float64, error) {
	q := url.Values{}
	q.Set("function", "CURRENCY_EXCHANGE_RATE")
	q.Set("from_currency", from)
	q.Set("to_currency", to)
	q.Set("apikey", a.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return 0, errors.Wrap(err, "could not build forex request")
	}

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return 0, errors.Wrapf(ErrSourceUnavailable, "forex request %s/%s: %v", from, to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return 0, errors.Wrapf(ErrSourceUnavailable, "forex request %s/%s: status %d", from, to, resp.StatusCode)
	}

	var data map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, errors.Wrapf(ErrSourceUnavailable, "forex response %s/%s: %v", from, to, err)
	}

	raw, ok := data[realtimeRateKey]
	if !ok {
		// rate limiting and bad currency codes come back as 200 with a note
		for _, k := range []string{"Note", "Information", "Error Message"} {
			if msg, found := data[k]; found {
				log.Debugf("alpha vantage %s/%s: %s", from, to, string(msg))
			}
		}
		return 0, errors.Wrapf(ErrSourceUnavailable, "forex response %s/%s has no realtime rate", from, to)
	}

	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		return 0, errors.Wrapf(ErrSourceUnavailable, "forex response %s/%s: %v", from, to, err)
	}

	rate, err := strconv.ParseFloat(strings.TrimSpace(fields[exchangeRateKey]), 64)
	if err != nil || !validPrice(rate) {
		return 0, errors.Wrapf(ErrSourceUnavailable, "forex response %s/%s has invalid rate %q", from, to, fields[exchangeRateKey])
	}
	return rate, nil
}
