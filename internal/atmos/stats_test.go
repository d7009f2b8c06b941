package atmos

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	stats := Summarize([]float64{10, 20, 30, 40})
	require.NotNil(t, stats)

	assert.Equal(t, 25.0, stats.Mean)
	// Nearest rank: round(0.9*3) = 3, 0-indexed in the ascending sort.
	assert.Equal(t, 40.0, stats.P90)
	assert.Equal(t, 40.0, stats.Last)
}

func TestSummarizeLastIsChronological(t *testing.T) {
	// Last reflects input order, not sorted order.
	stats := Summarize([]float64{40, 30, 20, 10})
	require.NotNil(t, stats)
	assert.Equal(t, 10.0, stats.Last)
	assert.Equal(t, 40.0, stats.P90)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Nil(t, Summarize(nil))
	assert.Nil(t, Summarize([]float64{}))
}

func TestSummarizeAllNaN(t *testing.T) {
	assert.Nil(t, Summarize([]float64{math.NaN(), math.NaN()}))
}

func TestSummarizeFiltersNaN(t *testing.T) {
	stats := Summarize([]float64{10, math.NaN(), 20})
	require.NotNil(t, stats)
	assert.Equal(t, 15.0, stats.Mean)
	assert.Equal(t, 20.0, stats.Last)
}

func TestSummarizeRounding(t *testing.T) {
	stats := Summarize([]float64{1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0})
	require.NotNil(t, stats)
	assert.Equal(t, 0.333, stats.Mean)
	assert.Equal(t, 0.333, stats.P90)
	// Last stays un-rounded.
	assert.Equal(t, 1.0/3.0, stats.Last)
}

func TestSummarizeSingleValue(t *testing.T) {
	stats := Summarize([]float64{7.5})
	require.NotNil(t, stats)
	assert.Equal(t, 7.5, stats.Mean)
	assert.Equal(t, 7.5, stats.P90)
	assert.Equal(t, 7.5, stats.Last)
}
