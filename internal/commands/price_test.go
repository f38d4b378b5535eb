package commands

import (
	"context"
	"testing"
	"time"

	"market-monitor-bot/internal/price"
	"market-monitor-bot/internal/types"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	price float64
	err   error
	last  [3]string
}

func (s *countingSource) FetchPrice(_ context.Context, class types.InstrumentClass, instrument, quote string) (float64, error) {
	s.calls++
	s.last = [3]string{class.String(), instrument, quote}
	return s.price, s.err
}

func TestCommandForex(t *testing.T) {
	src := &countingSource{price: 1.0845}
	l := NewLookup(src)

	text, err := l.CommandForex(context.Background(), "eur usd")
	require.NoError(t, err)
	assert.Equal(t, `The current exchange rate from EUR to USD is *1\.084500*`, text)
	assert.Equal(t, [3]string{"forex", "EUR/USD", ""}, src.last)

	_, err = l.CommandForex(context.Background(), "EUR")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestCommandCryptoCaches(t *testing.T) {
	src := &countingSource{price: 50500}
	l := NewLookup(src)

	for i := 0; i < 3; i++ {
		text, err := l.CommandCrypto(context.Background(), "Bitcoin USD")
		require.NoError(t, err)
		assert.Equal(t, "The current price of bitcoin in USD is *50,500*", text)
	}
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, [3]string{"crypto", "bitcoin", "usd"}, src.last)

	l.cache.now = func() time.Time { return time.Now().Add(time.Minute) }
	_, err := l.CommandCrypto(context.Background(), "bitcoin usd")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCommandCryptoUnavailable(t *testing.T) {
	l := NewLookup(&countingSource{err: errors.Wrap(price.ErrSourceUnavailable, "down")})

	_, err := l.CommandCrypto(context.Background(), "notacoin usd")
	assert.ErrorIs(t, err, price.ErrSourceUnavailable)

	_, err = l.CommandCrypto(context.Background(), "bitcoin")
	assert.ErrorIs(t, err, ErrUsage)
}
