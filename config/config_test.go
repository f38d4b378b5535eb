package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	assert.Equal(t, 10*time.Second, GetDuration("alert_interval"))
	assert.Equal(t, "usd", GetString("alert_quote_currency"))
	assert.Equal(t, 4, GetInt("price_fetch_concurrency"))
	assert.True(t, GetBool("render_images"))
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("ALERT_INTERVAL", "30s")
	t.Setenv("PRICE_FETCH_RETRIES", "2")

	assert.Equal(t, 30*time.Second, GetDuration("alert_interval"))
	assert.Equal(t, 2, GetInt("price_fetch_retries"))
}
