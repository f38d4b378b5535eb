package alert

import (
	"sort"
	"sync"

	"market-monitor-bot/internal/types"

	"github.com/pkg/errors"
)

// Store is the in-memory registry of active alerts, bucketed by subscriber
type Store struct {
	mu      sync.Mutex
	buckets map[string][]types.Alert
}

func NewStore() *Store {
	return &Store{buckets: make(map[string][]types.Alert)}
}

// Add appends a to its subscriber's bucket
func (s *Store) Add(a types.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buckets[a.SubscriberID] = append(s.buckets[a.SubscriberID], a)
}

// Snapshot returns a copy of every (subscriber, alert) pair
func (s *Store) Snapshot() ([]types.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []types.Entry
	for subscriberID, alerts := range s.buckets {
		if len(alerts) == 0 {
			return nil, errors.Wrapf(ErrStoreCorruption, "empty bucket for subscriber %s", subscriberID)
		}
		for _, a := range alerts {
			entries = append(entries, types.Entry{SubscriberID: subscriberID, Alert: a})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Alert.CreatedAt.Before(entries[j].Alert.CreatedAt)
	})
	return entries, nil
}

// List returns a copy of one subscriber's alerts, oldest first
func (s *Store) List(subscriberID string) []types.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts := append([]types.Alert(nil), s.buckets[subscriberID]...)
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.Before(alerts[j].CreatedAt)
	})
	return alerts
}

// RemoveMany deletes exactly the given alert instances and prunes emptied
// buckets. Entries that are already gone are ignored. It returns the number
// of alerts removed.
func (s *Store) RemoveMany(entries []types.Entry) int {
	if len(entries) == 0 {
		return 0
	}

	drop := make(map[string]map[string]struct{})
	for _, e := range entries {
		if drop[e.SubscriberID] == nil {
			drop[e.SubscriberID] = make(map[string]struct{})
		}
		drop[e.SubscriberID][e.Alert.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for subscriberID, ids := range drop {
		alerts, ok := s.buckets[subscriberID]
		if !ok {
			continue
		}

		kept := alerts[:0]
		for _, a := range alerts {
			if _, gone := ids[a.ID]; gone {
				removed++
				continue
			}
			kept = append(kept, a)
		}

		if len(kept) == 0 {
			delete(s.buckets, subscriberID)
		} else {
			s.buckets[subscriberID] = kept
		}
	}
	return removed
}

// Len returns the number of active alerts
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, alerts := range s.buckets {
		n += len(alerts)
	}
	return n
}

// Subscribers returns the number of subscribers with at least one alert
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.buckets)
}

// HasSubscriber reports whether a bucket exists for subscriberID
func (s *Store) HasSubscriber(subscriberID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.buckets[subscriberID]
	return ok
}
