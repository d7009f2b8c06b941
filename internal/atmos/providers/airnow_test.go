package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAirNowMissingKeyIsAbsent(t *testing.T) {
	adapter := NewAirNow("https://example.org", "", nil, zap.NewNop())

	obs, src := adapter.Latest(context.Background(), 40.7, -74.0, 15.5)
	assert.Empty(t, obs)
	assert.True(t, src.AuthRequired)
	assert.Contains(t, src.URL, "API_KEY=<REQUIRED>")

	sample, _ := adapter.Sample(context.Background(), 40.7, -74.0, 15.5)
	assert.Equal(t, map[string]string{"warning": "API key required"}, sample)
}

func TestAirNowLatest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "API_KEY=secret")
		w.Write([]byte(`[
			{"DateObserved":"2024-06-01","HourObserved":12,"ParameterName":"PM2.5","AQI":42},
			{"DateObserved":"2024-06-01","HourObserved":12,"ParameterName":"O3","AQI":55},
			{"DateObserved":"2024-06-01","HourObserved":12,"ParameterName":"PM10","AQI":20}
		]`))
	}))
	t.Cleanup(server.Close)

	adapter := NewAirNow(server.URL, "secret", NewFetcher(server.Client(), "airnow-test"), zap.NewNop())

	obs, src := adapter.Latest(context.Background(), 40.7, -74.0, 15.5)
	require.Len(t, obs, 2, "only canonical pollutants are mapped")

	assert.Equal(t, "PM2.5", obs[0].Name)
	assert.Equal(t, 42.0, obs[0].Value)
	assert.Equal(t, "AQI", obs[0].Unit)

	assert.Equal(t, "O3", obs[1].Name)
	assert.Equal(t, "AirNow observations", src.Name)
}

func TestAirNowTransportErrorIsAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	adapter := NewAirNow(server.URL, "secret", NewFetcher(server.Client(), "airnow-test"), zap.NewNop())

	obs, src := adapter.Latest(context.Background(), 40.7, -74.0, 15.5)
	assert.Empty(t, obs)
	assert.Equal(t, "AirNow (error)", src.Name)
}

func TestAirNowSampleReturnsRawPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"DateObserved":"2024-06-01","HourObserved":12,"ParameterName":"PM2.5","AQI":42}]`))
	}))
	t.Cleanup(server.Close)

	adapter := NewAirNow(server.URL, "secret", NewFetcher(server.Client(), "airnow-test"), zap.NewNop())

	sample, src := adapter.Sample(context.Background(), 40.7, -74.0, 15.5)
	payload, ok := sample.([]airnowObservation)
	require.True(t, ok)
	require.Len(t, payload, 1)
	assert.Equal(t, "PM2.5", payload[0].ParameterName)
	assert.Equal(t, "AirNow observations", src.Name)
}
