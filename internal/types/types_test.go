package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstrumentClass(t *testing.T) {
	c, ok := ParseInstrumentClass("FOREX")
	require.True(t, ok)
	assert.Equal(t, Forex, c)

	c, ok = ParseInstrumentClass(" crypto ")
	require.True(t, ok)
	assert.Equal(t, Crypto, c)

	_, ok = ParseInstrumentClass("stocks")
	assert.False(t, ok)
}

func TestCanonicalInstrument(t *testing.T) {
	tests := []struct {
		class InstrumentClass
		in    string
		want  string
		ok    bool
	}{
		{Forex, "eur/usd", "EUR/USD", true},
		{Forex, " Gbp/Jpy ", "GBP/JPY", true},
		{Forex, "eurusd", "", false},
		{Forex, "eur/", "", false},
		{Forex, "e-r/usd", "", false},
		{Crypto, "Bitcoin", "bitcoin", true},
		{Crypto, "btc-bitcoin", "btc-bitcoin", true},
		{Crypto, "", "", false},
		{InstrumentClass(9), "bitcoin", "", false},
	}

	for _, tt := range tests {
		got, ok := CanonicalInstrument(tt.class, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestAlertTriggered(t *testing.T) {
	a := Alert{Target: 50000}
	assert.False(t, a.Triggered(49999.99))
	assert.True(t, a.Triggered(50000))
	assert.True(t, a.Triggered(50500))
}
