package notify

import (
	"context"
	"testing"

	"market-monitor-bot/internal/types"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	texts  []string
	images [][]byte
	err    error
}

func (r *recordingTransport) SendMessage(_, text string) error {
	if r.err != nil {
		return r.err
	}
	r.texts = append(r.texts, text)
	return nil
}

func (r *recordingTransport) SendImage(_ string, image []byte, caption string) error {
	if r.err != nil {
		return r.err
	}
	r.images = append(r.images, image)
	r.texts = append(r.texts, caption)
	return nil
}

type stubRenderer struct{ err error }

func (s stubRenderer) Render(types.Fired) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("png"), nil
}

func cryptoFired() types.Fired {
	return types.Fired{
		Entry: types.Entry{
			SubscriberID: "42",
			Alert:        types.Alert{Class: types.Crypto, Instrument: "bitcoin", Target: 50000},
		},
		Price: 50500,
		Quote: "usd",
	}
}

func TestCaption(t *testing.T) {
	assert.Equal(t,
		"🚨 *Crypto Alert*: BITCOIN has reached *50,500 USD*\nTarget price: *50,000 USD*",
		Caption(cryptoFired()))

	fx := types.Fired{
		Entry: types.Entry{Alert: types.Alert{Class: types.Forex, Instrument: "EUR/USD", Target: 1.1}},
		Price: 1.1,
		Quote: "USD",
	}
	assert.Equal(t,
		"🚨 *Forex Alert*: EUR/USD has reached *1\\.100000*\nTarget price: *1\\.100000*",
		Caption(fx))

	odd := cryptoFired()
	odd.Quote = "usdt_e"
	assert.Equal(t,
		"🚨 *Crypto Alert*: BITCOIN has reached *50,500 USDT\\_E*\nTarget price: *50,000 USDT\\_E*",
		Caption(odd))
}

func TestNotifySendsImage(t *testing.T) {
	tr := &recordingTransport{}
	d := NewDispatcher(tr, stubRenderer{})

	require.NoError(t, d.Notify(context.Background(), cryptoFired()))
	assert.Len(t, tr.images, 1)
	assert.Len(t, tr.texts, 1)
}

func TestNotifyFallsBackToText(t *testing.T) {
	tr := &recordingTransport{}
	d := NewDispatcher(tr, stubRenderer{err: errors.New("no font")})

	require.NoError(t, d.Notify(context.Background(), cryptoFired()))
	assert.Empty(t, tr.images)
	assert.Len(t, tr.texts, 1)

	d = NewDispatcher(tr, nil)
	require.NoError(t, d.Notify(context.Background(), cryptoFired()))
	assert.Len(t, tr.texts, 2)
}

func TestNotifyDeliveryFailed(t *testing.T) {
	tr := &recordingTransport{err: errors.New("Forbidden: bot was blocked by the user")}

	err := NewDispatcher(tr, stubRenderer{}).Notify(context.Background(), cryptoFired())
	assert.ErrorIs(t, err, ErrDeliveryFailed)

	err = NewDispatcher(tr, nil).Notify(context.Background(), cryptoFired())
	assert.ErrorIs(t, err, ErrDeliveryFailed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewDispatcher(&recordingTransport{}, nil).Notify(ctx, cryptoFired())
	assert.ErrorIs(t, err, ErrDeliveryFailed)
}
