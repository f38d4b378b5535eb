package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdownV2(t *testing.T) {
	assert.Equal(t, `EUR/USD 1\.10 \(target\)\!`, EscapeMarkdownV2("EUR/USD 1.10 (target)!"))
	assert.Equal(t, `a\\b`, EscapeMarkdownV2(`a\b`))
}

func TestFormatPriceUS(t *testing.T) {
	assert.Equal(t, "50,500", FormatPriceUS(50500, false))
	assert.Equal(t, "12.35", FormatPriceUS(12.345678, false))
	assert.Equal(t, "1.084500", FormatPriceUS(1.0845, false))
	assert.Equal(t, "0.00000123", FormatPriceUS(0.00000123, false))
	assert.Equal(t, `1\.084500`, FormatPriceUS(1.0845, true))
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "3 minutes ago", FormatAge(time.Now().Add(-3*time.Minute)))
}
