package telegram

import (
	"context"
	"testing"
	"time"

	"market-monitor-bot/internal/alert"
	"market-monitor-bot/internal/commands"
	"market-monitor-bot/internal/types"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noSource struct{}

func (noSource) FetchPrice(context.Context, types.InstrumentClass, string, string) (float64, error) {
	return 3, nil
}

type noNotifier struct{}

func (noNotifier) Notify(context.Context, types.Fired) error { return nil }

func newTestHandler() (*Handler, *alert.Service) {
	store := alert.NewStore()
	engine := alert.NewEngine(noSource{}, alert.EngineConfig{}, nil)
	svc := alert.NewService(store, engine, noNotifier{}, time.Second, nil)
	return NewHandler(svc, commands.NewLookup(noSource{})), svc
}

func TestHandleAlertCommand(t *testing.T) {
	h, svc := newTestHandler()

	reply := h.HandleCommand(context.Background(), 42, "alert", "crypto Bitcoin 50000")
	assert.Equal(t, "Alert set for bitcoin at 50,000", reply)

	reply = h.HandleCommand(context.Background(), 42, "alert", "forex eur/usd 1.10")
	assert.Equal(t, `Alert set for EUR/USD at 1\.100000`, reply)

	alerts := svc.ListAlerts("42")
	require.Len(t, alerts, 2)
	assert.Equal(t, types.Crypto, alerts[0].Class)
	assert.Equal(t, "42", alerts[0].SubscriberID)
}

func TestHandleAlertCommandRejects(t *testing.T) {
	h, svc := newTestHandler()

	for _, args := range []string{"", "crypto bitcoin", "stocks aapl 100", "crypto bitcoin abc", "crypto bitcoin -5", "crypto bitcoin 0", "forex eurusd 1.1"} {
		reply := h.HandleCommand(context.Background(), 7, "alert", args)
		assert.Contains(t, reply, "Usage: /alert", args)
	}
	assert.Empty(t, svc.ListAlerts("7"))
}

func TestHandleAlertList(t *testing.T) {
	h, _ := newTestHandler()

	assert.Equal(t, `You have no active alerts\.`, h.HandleCommand(context.Background(), 1, "alerts", ""))

	h.HandleCommand(context.Background(), 1, "alert", "crypto ethereum 4000")
	reply := h.HandleCommand(context.Background(), 1, "alert", "list")
	assert.Contains(t, reply, "Your active alerts:")
	assert.Contains(t, reply, "crypto ethereum at *4,000*")
	assert.Contains(t, reply, "now")
}

func TestHandleLookupCommands(t *testing.T) {
	h, _ := newTestHandler()

	assert.Equal(t, "The current price of bitcoin in USD is *3\\.00*", h.HandleCommand(context.Background(), 1, "crypto", "bitcoin usd"))
	assert.Contains(t, h.HandleCommand(context.Background(), 1, "forex", "eur"), "Usage: /forex")
	assert.Contains(t, h.HandleCommand(context.Background(), 1, "start", ""), "Welcome")
	assert.Equal(t, "Command help message", h.HandleCommand(context.Background(), 1, "unknown", ""))
}

type fakeSender struct {
	messages []Message
	photos   []int64
	err      error
}

func (f *fakeSender) Send(m Message) error {
	f.messages = append(f.messages, m)
	return f.err
}

func (f *fakeSender) SendPhoto(chatID int64, _ []byte, _ string) error {
	f.photos = append(f.photos, chatID)
	return f.err
}

func TestTransport(t *testing.T) {
	s := &fakeSender{}
	tr := NewTransport(s)

	require.NoError(t, tr.SendMessage("-100123", "hi"))
	require.NoError(t, tr.SendImage("55", []byte{1}, "cap"))
	assert.Equal(t, int64(-100123), s.messages[0].ChatID)
	assert.Equal(t, []int64{55}, s.photos)

	assert.Error(t, tr.SendMessage("U1", "hi"))

	s.err = errors.New("blocked by user")
	assert.Error(t, tr.SendMessage("1", "hi"))
}
