package types

import (
	"strings"
	"unicode"
)

// CanonicalInstrument normalizes an instrument identifier for its class.
// Forex pairs become upper case "BASE/QUOTE", crypto ids become lower case.
// The second return value is false when the identifier is malformed.
func CanonicalInstrument(class InstrumentClass, instrument string) (string, bool) {
	instrument = strings.TrimSpace(instrument)
	switch class {
	case Forex:
		base, quote, ok := SplitPair(instrument)
		if !ok {
			return "", false
		}
		return base + "/" + quote, true
	case Crypto:
		id := strings.ToLower(instrument)
		if id == "" || strings.ContainsFunc(id, unicode.IsSpace) {
			return "", false
		}
		return id, true
	}
	return "", false
}

// SplitPair splits "eur/usd" into "EUR" and "USD"
func SplitPair(pair string) (string, string, bool) {
	base, quote, found := strings.Cut(strings.ToUpper(strings.TrimSpace(pair)), "/")
	if !found || !isCurrencyCode(base) || !isCurrencyCode(quote) {
		return "", "", false
	}
	return base, quote, true
}

func isCurrencyCode(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
