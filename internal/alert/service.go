package alert

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"market-monitor-bot/internal/metrics"
	"market-monitor-bot/internal/notify"
	"market-monitor-bot/internal/types"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// Notifier delivers a fired alert to its subscriber
type Notifier interface {
	Notify(ctx context.Context, f types.Fired) error
}

// CycleReport summarizes one evaluation pass
type CycleReport struct {
	Evaluated int
	Fired     int
	Delivered int
	Failed    int
}

// Service owns the alert store and runs the periodic evaluation loop
type Service struct {
	store    *Store
	engine   *Engine
	notifier Notifier
	interval time.Duration
	metrics  *metrics.AlertMetrics
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewService(store *Store, engine *Engine, notifier Notifier, interval time.Duration, m *metrics.AlertMetrics) *Service {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Service{
		store:    store,
		engine:   engine,
		notifier: notifier,
		interval: interval,
		metrics:  m,
		now:      time.Now,
	}
}

// AddAlert validates and stores a new upward price alert
func (s *Service) AddAlert(subscriberID string, class types.InstrumentClass, instrument string, target float64) (types.Alert, error) {
	if subscriberID == "" {
		return types.Alert{}, errors.Wrap(ErrInvalidAlert, "missing subscriber")
	}
	if !class.Valid() {
		return types.Alert{}, errors.Wrapf(ErrInvalidAlert, "unknown instrument class %d", class)
	}
	if !(target > 0) || math.IsInf(target, 0) {
		return types.Alert{}, errors.Wrapf(ErrInvalidAlert, "target price must be a positive number, got %v", target)
	}

	canonical, ok := types.CanonicalInstrument(class, instrument)
	if !ok {
		return types.Alert{}, errors.Wrapf(ErrInvalidAlert, "malformed %s instrument %q", class, instrument)
	}

	a := types.Alert{
		ID:           uuid.NewString(),
		SubscriberID: subscriberID,
		Class:        class,
		Instrument:   canonical,
		Target:       target,
		CreatedAt:    s.now(),
	}
	s.store.Add(a)

	if s.metrics != nil {
		s.metrics.AlertsCreated.WithLabelValues(class.String()).Inc()
	}
	s.observeStore()

	log.WithFields(log.Fields{
		"alert":      a.ID,
		"subscriber": subscriberID,
		"instrument": canonical,
		"target":     target,
	}).Info("Alert added")
	return a, nil
}

// ListAlerts returns the active alerts of one subscriber, oldest first
func (s *Service) ListAlerts(subscriberID string) []types.Alert {
	return s.store.List(subscriberID)
}

// RunCycle performs one pass: evaluate, notify each fired alert and remove
// only the alerts whose notification succeeded.
func (s *Service) RunCycle(ctx context.Context) (report CycleReport, err error) {
	start := s.now()
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			log.Errorf("🔥 Panic recovered in alert checker: %v\nStack trace: %s", r, stackBuf[:stackSize])
			err = errors.Errorf("alert pass panicked: %v", r)
		}
		if s.metrics != nil {
			s.metrics.Cycles.Inc()
			s.metrics.CycleDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				s.metrics.CycleFailures.Inc()
			}
		}
	}()

	log.Debug("🔄 Checking alerts...")

	snapshot, err := s.store.Snapshot()
	if err != nil {
		log.Errorf("❌ Aborting alert pass: %v", err)
		return report, err
	}
	report.Evaluated = len(snapshot)

	fired := s.engine.Evaluate(ctx, snapshot)
	report.Fired = len(fired)

	var delivered []types.Fired
	for _, f := range fired {
		if err := s.deliver(ctx, f); err != nil {
			report.Failed++
			if s.metrics != nil {
				s.metrics.DeliveryFailures.Inc()
			}
			log.WithFields(log.Fields{
				"alert":      f.Alert.ID,
				"subscriber": f.SubscriberID,
			}).Errorf("❌ Failed to send price alert notification, keeping alert: %v", err)
			continue
		}
		delivered = append(delivered, f)
		log.Infof("✅ Price alert notification sent to subscriber %s", f.SubscriberID)
	}

	report.Delivered = s.store.RemoveMany(lo.Map(delivered, func(f types.Fired, _ int) types.Entry {
		return f.Entry
	}))
	if s.metrics != nil {
		s.metrics.AlertsDelivered.Add(float64(report.Delivered))
	}
	s.observeStore()

	log.Debugf("✅ Alert check completed: %d evaluated, %d fired, %d delivered, %d failed",
		report.Evaluated, report.Fired, report.Delivered, report.Failed)
	return report, nil
}

// deliver notifies one fired alert. A panicking notifier counts as a failed
// delivery so the alerts already delivered in this pass are still removed.
func (s *Service) deliver(ctx context.Context, f types.Fired) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			log.Errorf("🔥 Panic recovered while notifying subscriber %s: %v\nStack trace: %s", f.SubscriberID, r, stackBuf[:stackSize])
			err = errors.Wrapf(notify.ErrDeliveryFailed, "notifier panicked: %v", r)
		}
	}()
	return s.notifier.Notify(ctx, f)
}

// Start runs passes in the background with a fixed delay between the end
// of a pass and the start of the next. Calling Start on a running service
// is a no-op.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)

	log.Infof("🚀 Alert service started, checking every %s", s.interval)
}

// Stop cancels the loop and waits for the running pass to finish. The
// service counts as running until then, so a concurrent Start is a no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	s.mu.Lock()
	if s.done == done {
		s.cancel, s.done = nil, nil
	}
	s.mu.Unlock()
	log.Info("Alert service stopped")
}

func (s *Service) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			_, _ = s.RunCycle(ctx)
			timer.Reset(s.interval)
		}
	}
}

func (s *Service) observeStore() {
	if s.metrics == nil {
		return
	}
	s.metrics.ActiveAlerts.Set(float64(s.store.Len()))
	s.metrics.Subscribers.Set(float64(s.store.Subscribers()))
}
