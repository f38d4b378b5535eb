package notify

import (
	"context"
	"strings"

	"market-monitor-bot/internal/types"
	"market-monitor-bot/lib/helpers"
	"market-monitor-bot/lib/translation"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrDeliveryFailed means the transport could not deliver a notification
var ErrDeliveryFailed = errors.New("notification delivery failed")

// Transport sends MarkdownV2 messages and images to a subscriber
type Transport interface {
	SendMessage(subscriberID, text string) error
	SendImage(subscriberID string, image []byte, caption string) error
}

// Renderer draws the image attached to a fired alert
type Renderer interface {
	Render(f types.Fired) ([]byte, error)
}

// Dispatcher turns fired alerts into messages on a Transport
type Dispatcher struct {
	transport Transport
	renderer  Renderer
}

// NewDispatcher creates a dispatcher. A nil renderer sends text only.
func NewDispatcher(transport Transport, renderer Renderer) *Dispatcher {
	return &Dispatcher{transport: transport, renderer: renderer}
}

// Notify delivers f to its subscriber, as an image card when possible
func (d *Dispatcher) Notify(ctx context.Context, f types.Fired) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(ErrDeliveryFailed, err.Error())
	}

	caption := Caption(f)

	if d.renderer != nil {
		img, err := d.renderer.Render(f)
		if err == nil {
			if err := d.transport.SendImage(f.SubscriberID, img, caption); err != nil {
				return errors.Wrapf(ErrDeliveryFailed, "send image to %s: %v", f.SubscriberID, err)
			}
			return nil
		}
		log.Warnf("could not render alert card for %s, sending text: %v", f.Alert.Instrument, err)
	}

	if err := d.transport.SendMessage(f.SubscriberID, caption); err != nil {
		return errors.Wrapf(ErrDeliveryFailed, "send message to %s: %v", f.SubscriberID, err)
	}
	return nil
}

// Caption is the MarkdownV2 text identifying the instrument, observed and target price
func Caption(f types.Fired) string {
	current := helpers.FormatPriceUS(f.Price, true)
	target := helpers.FormatPriceUS(f.Alert.Target, true)

	switch f.Alert.Class {
	case types.Forex:
		return translation.Translate("🚨 *Forex Alert*: %s has reached *%s*\nTarget price: *%s*",
			helpers.EscapeMarkdownV2(f.Alert.Instrument), current, target,
		)
	default:
		quote := helpers.EscapeMarkdownV2(strings.ToUpper(f.Quote))
		return translation.Translate("🚨 *Crypto Alert*: %s has reached *%s %s*\nTarget price: *%s %s*",
			helpers.EscapeMarkdownV2(strings.ToUpper(f.Alert.Instrument)),
			current, quote,
			target, quote,
		)
	}
}
