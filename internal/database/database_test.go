package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMetricRoundTrip(t *testing.T) {
	db := openTestDB(t)

	v, err := db.GetMetric("commands_processed")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	require.NoError(t, db.SaveMetric("commands_processed", 12))
	require.NoError(t, db.SaveMetric("commands_processed", 15))

	v, err = db.GetMetric("commands_processed")
	require.NoError(t, err)
	assert.Equal(t, 15.0, v)
}

func TestLabeledMetrics(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveMetricWithLabels("messages_per_channel", "42", "Traders", 3))
	require.NoError(t, db.SaveMetricWithLabels("messages_per_channel", "43", "PrivateChat-43", 1))
	require.NoError(t, db.SaveMetric("messages_per_channel", 99))

	got, err := db.GetMetricsWithLabels("messages_per_channel")
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]float64{
		"42": {"Traders": 3},
		"43": {"PrivateChat-43": 1},
	}, got)
}
