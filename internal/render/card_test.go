package render

import (
	"bytes"
	"image/png"
	"testing"

	"market-monitor-bot/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardRender(t *testing.T) {
	f := types.Fired{
		Entry: types.Entry{
			SubscriberID: "U1",
			Alert:        types.Alert{Class: types.Crypto, Instrument: "bitcoin", Target: 50000},
		},
		Price: 50500,
		Quote: "usd",
	}

	card := NewCard()
	img, err := card.Render(f)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, card.Width, cfg.Width)
	assert.Equal(t, card.Height, cfg.Height)
}

func TestCardRejectsNonPositive(t *testing.T) {
	_, err := NewCard().Render(types.Fired{Price: 0, Entry: types.Entry{Alert: types.Alert{Target: 1}}})
	assert.Error(t, err)
}
