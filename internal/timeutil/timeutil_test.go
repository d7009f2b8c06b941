package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhenZuluSuffix(t *testing.T) {
	got, err := ParseWhen("2024-06-01T12:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestParseWhenOffsetNormalizedToUTC(t *testing.T) {
	got, err := ParseWhen("2024-06-01T14:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC), got)
}

func TestParseWhenEmptyDefaultsToNow(t *testing.T) {
	before := time.Now().UTC()
	got, err := ParseWhen("")
	after := time.Now().UTC()

	require.NoError(t, err)
	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestParseWhenInvalid(t *testing.T) {
	_, err := ParseWhen("june first")
	assert.Error(t, err)
}

func TestISO(t *testing.T) {
	ts := time.Date(2024, 6, 1, 14, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "2024-06-01T12:30:00Z", ISO(ts))
}

func TestRange(t *testing.T) {
	center := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	from, to := Range(center, 24*time.Hour, 48*time.Hour)
	assert.Equal(t, center.Add(-24*time.Hour), from)
	assert.Equal(t, center.Add(48*time.Hour), to)
}
