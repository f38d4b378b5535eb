package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateFallsBackToMessageID(t *testing.T) {
	assert.Equal(t, "Alert set for bitcoin at 50000", Translate("Alert set for %s at %s", "bitcoin", "50000"))
	assert.Equal(t, "Coin not found", Translate("Coin not found"))
}
