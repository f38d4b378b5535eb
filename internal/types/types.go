package types

import (
	"strings"
	"time"
)

// InstrumentClass tells which price provider serves an instrument
type InstrumentClass int

const (
	Forex InstrumentClass = iota + 1
	Crypto
)

func (c InstrumentClass) String() string {
	switch c {
	case Forex:
		return "forex"
	case Crypto:
		return "crypto"
	}
	return "unknown"
}

// Valid reports whether c is a known class
func (c InstrumentClass) Valid() bool {
	return c == Forex || c == Crypto
}

// ParseInstrumentClass maps "forex" or "crypto" (any case) to a class
func ParseInstrumentClass(s string) (InstrumentClass, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forex":
		return Forex, true
	case "crypto":
		return Crypto, true
	}
	return 0, false
}

// Alert is one upward price target set by a subscriber
type Alert struct {
	ID           string          `json:"id"`
	SubscriberID string          `json:"subscriber_id"`
	Class        InstrumentClass `json:"class"`
	Instrument   string          `json:"instrument"`
	Target       float64         `json:"target"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Triggered reports whether price has reached the target
func (a Alert) Triggered(price float64) bool {
	return price >= a.Target
}

// Key groups alerts that are priced by the same fetch
type Key struct {
	Class      InstrumentClass
	Instrument string
}

func (a Alert) Key() Key {
	return Key{Class: a.Class, Instrument: a.Instrument}
}

// Entry is an (owner, alert) pair as seen in a store snapshot
type Entry struct {
	SubscriberID string
	Alert        Alert
}

// Fired is an alert whose target was reached during a pass
type Fired struct {
	Entry
	Price float64
	Quote string
}
