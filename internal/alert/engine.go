package alert

import (
	"context"
	"sync"
	"time"

	"market-monitor-bot/internal/metrics"
	"market-monitor-bot/internal/price"
	"market-monitor-bot/internal/types"

	"github.com/davecgh/go-spew/spew"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

// EngineConfig tunes how a pass fetches prices
type EngineConfig struct {
	// Quote currency for crypto alerts
	Quote string
	// Upper bound on a single price fetch
	FetchTimeout time.Duration
	// Maximum number of fetches in flight
	Concurrency int
}

// Engine evaluates a store snapshot against live prices. It never
// mutates the store.
type Engine struct {
	source  price.Source
	config  EngineConfig
	metrics *metrics.AlertMetrics
}

func NewEngine(source price.Source, config EngineConfig, m *metrics.AlertMetrics) *Engine {
	if config.Quote == "" {
		config.Quote = "usd"
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &Engine{source: source, config: config, metrics: m}
}

// Evaluate fetches each distinct instrument of the snapshot once and
// returns the alerts whose target was reached, in snapshot order.
// Instruments whose fetch fails are skipped for this pass.
func (e *Engine) Evaluate(ctx context.Context, snapshot []types.Entry) []types.Fired {
	if len(snapshot) == 0 {
		return nil
	}

	keys := lo.Uniq(lo.Map(snapshot, func(en types.Entry, _ int) types.Key {
		return en.Alert.Key()
	}))
	prices := e.fetchAll(ctx, keys)

	var fired []types.Fired
	for _, en := range snapshot {
		p, ok := prices[en.Alert.Key()]
		if !ok {
			continue
		}

		log.WithFields(log.Fields{
			"alert":      en.Alert.ID,
			"subscriber": en.SubscriberID,
			"instrument": en.Alert.Instrument,
			"target":     en.Alert.Target,
			"price":      p,
		}).Debug("🔍 Checking price alert")

		if en.Alert.Triggered(p) {
			fired = append(fired, types.Fired{Entry: en, Price: p, Quote: e.quoteFor(en.Alert)})
			if e.metrics != nil {
				e.metrics.AlertsFired.WithLabelValues(en.Alert.Class.String()).Inc()
			}
		}
	}

	if len(fired) > 0 && log.IsLevelEnabled(log.DebugLevel) {
		log.Debugf("fired alerts: %s", spew.Sdump(fired))
	}
	return fired
}

func (e *Engine) quoteFor(a types.Alert) string {
	if a.Class == types.Forex {
		if _, quote, ok := types.SplitPair(a.Instrument); ok {
			return quote
		}
	}
	return e.config.Quote
}

func (e *Engine) fetchAll(ctx context.Context, keys []types.Key) map[types.Key]float64 {
	var mu sync.Mutex
	prices := make(map[types.Key]float64, len(keys))

	p := pool.New().WithMaxGoroutines(e.config.Concurrency)
	for _, k := range keys {
		p.Go(func() {
			v, err := e.fetch(ctx, k)
			if err != nil {
				log.WithFields(log.Fields{
					"class":      k.Class.String(),
					"instrument": k.Instrument,
				}).Warnf("⚠️ No price data, skipping this pass: %v", err)
				if e.metrics != nil {
					e.metrics.FetchFailures.WithLabelValues(k.Class.String()).Inc()
				}
				return
			}

			mu.Lock()
			prices[k] = v
			mu.Unlock()
		})
	}
	p.Wait()

	return prices
}

func (e *Engine) fetch(ctx context.Context, k types.Key) (float64, error) {
	if e.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.FetchTimeout)
		defer cancel()
	}
	return e.source.FetchPrice(ctx, k.Class, k.Instrument, e.config.Quote)
}
