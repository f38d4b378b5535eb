package commands

import (
	"context"
	"strings"
	"time"

	"market-monitor-bot/internal/price"
	"market-monitor-bot/internal/types"
	"market-monitor-bot/lib/helpers"
	"market-monitor-bot/lib/translation"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrUsage is returned when a command is called with the wrong arguments
var ErrUsage = errors.New("wrong command arguments")

const cacheTTL = 30 * time.Second

// Lookup answers the price lookup commands
type Lookup struct {
	source price.Source
	cache  *quoteCache
}

func NewLookup(source price.Source) *Lookup {
	return &Lookup{source: source, cache: newQuoteCache()}
}

// CommandForex handles "/forex <from> <to>"
func (l *Lookup) CommandForex(ctx context.Context, argument string) (string, error) {
	log.Debugf("processing command /forex with argument :%s", argument)

	args := strings.Fields(argument)
	if len(args) != 2 {
		return "", errors.Wrap(ErrUsage, "command /forex")
	}

	pair, ok := types.CanonicalInstrument(types.Forex, args[0]+"/"+args[1])
	if !ok {
		return "", errors.Wrap(ErrUsage, "command /forex")
	}

	rate, err := l.fetch(ctx, types.Forex, pair, "")
	if err != nil {
		return "", errors.Wrap(err, "command /forex")
	}

	from, to, _ := types.SplitPair(pair)
	return translation.Translate("The current exchange rate from %s to %s is *%s*",
		from, to, helpers.FormatPriceUS(rate, true),
	), nil
}

// CommandCrypto handles "/crypto <asset> <currency>"
func (l *Lookup) CommandCrypto(ctx context.Context, argument string) (string, error) {
	log.Debugf("processing command /crypto with argument :%s", argument)

	args := strings.Fields(argument)
	if len(args) != 2 {
		return "", errors.Wrap(ErrUsage, "command /crypto")
	}

	asset, ok := types.CanonicalInstrument(types.Crypto, args[0])
	if !ok {
		return "", errors.Wrap(ErrUsage, "command /crypto")
	}
	quote := strings.ToLower(args[1])

	p, err := l.fetch(ctx, types.Crypto, asset, quote)
	if err != nil {
		return "", errors.Wrap(err, "command /crypto")
	}

	return translation.Translate("The current price of %s in %s is *%s*",
		helpers.EscapeMarkdownV2(asset), helpers.EscapeMarkdownV2(strings.ToUpper(quote)), helpers.FormatPriceUS(p, true),
	), nil
}

func (l *Lookup) fetch(ctx context.Context, class types.InstrumentClass, instrument, quote string) (float64, error) {
	key := class.String() + ":" + instrument + ":" + quote
	if p, found := l.cache.get(key); found {
		log.Debugf("returning cached price for %s", key)
		return p, nil
	}

	p, err := l.source.FetchPrice(ctx, class, instrument, quote)
	if err != nil {
		return 0, err
	}
	l.cache.set(key, p, cacheTTL)
	return p, nil
}
