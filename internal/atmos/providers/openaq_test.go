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

func newTestOpenAQ(t *testing.T, handler http.HandlerFunc) *OpenAQ {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenAQ(server.URL, "test-key", NewFetcher(server.Client(), "openaq-test"), zap.NewNop())
}

// stationHandler serves the three-step locations→detail→latest flow.
func stationHandler(t *testing.T, latestBody string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))

		switch r.URL.Path {
		case "/v3/locations":
			w.Write([]byte(`{"results":[{"id":2178}]}`))
		case "/v3/locations/2178":
			w.Write([]byte(`{"results":[{"sensors":[
				{"id":1,"parameter":{"name":"pm25","units":"µg/m³"}},
				{"id":2,"parameter":{"name":"o3","units":"ppm"}},
				{"id":3,"parameter":{"name":"so2","units":"ppb"}}
			]}]}`))
		case "/v3/locations/2178/latest":
			w.Write([]byte(latestBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestOpenAQLatest(t *testing.T) {
	adapter := newTestOpenAQ(t, stationHandler(t,
		`{"results":[
			{"sensorsId":1,"value":14.2},
			{"sensorsId":2,"value":0.031},
			{"sensorsId":3,"value":2.0},
			{"sensorsId":99,"value":1.0}
		]}`))

	obs, src := adapter.Latest(context.Background(), 40.7, -74.0, 25)

	require.Len(t, obs, 2, "unwanted parameters and unknown sensors are skipped")

	assert.Equal(t, "PM2.5", obs[0].Name)
	assert.Equal(t, 14.2, obs[0].Value)
	assert.Equal(t, "µg/m³", obs[0].Unit)

	// O3 came back in ppm and must be normalized to ppb.
	assert.Equal(t, "O3", obs[1].Name)
	assert.InDelta(t, 31.0, obs[1].Value, 1e-9)
	assert.Equal(t, "ppb", obs[1].Unit)

	assert.Equal(t, "OpenAQ latest by location (v3)", src.Name)
	assert.True(t, src.AuthRequired)
}

func TestOpenAQLatestSkipsNullValues(t *testing.T) {
	adapter := newTestOpenAQ(t, stationHandler(t,
		`{"results":[{"sensorsId":1,"value":null}]}`))

	obs, _ := adapter.Latest(context.Background(), 40.7, -74.0, 25)
	assert.Empty(t, obs)
}

func TestOpenAQNoNearbyStations(t *testing.T) {
	adapter := newTestOpenAQ(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})

	obs, src := adapter.Latest(context.Background(), 0, 0, 25)
	assert.Empty(t, obs)
	assert.Equal(t, "OpenAQ locations", src.Name)
	assert.Equal(t, "no nearby stations", src.Note)
}

func TestOpenAQNoStationDetail(t *testing.T) {
	adapter := newTestOpenAQ(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v3/locations" {
			w.Write([]byte(`{"results":[{"id":5}]}`))
			return
		}
		w.Write([]byte(`{"results":[]}`))
	})

	obs, src := adapter.Latest(context.Background(), 40.7, -74.0, 25)
	assert.Empty(t, obs)
	assert.Equal(t, "no station detail", src.Note)
}

func TestOpenAQTransportErrorIsAbsent(t *testing.T) {
	adapter := newTestOpenAQ(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	obs, src := adapter.Latest(context.Background(), 40.7, -74.0, 25)
	assert.Empty(t, obs)
	assert.Equal(t, "OpenAQ v3 (error)", src.Name)
}

func TestOpenAQRadiusInMeters(t *testing.T) {
	var gotQuery string
	adapter := newTestOpenAQ(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v3/locations" {
			gotQuery = r.URL.RawQuery
		}
		w.Write([]byte(`{"results":[]}`))
	})

	adapter.Latest(context.Background(), 40.7, -74.0, 25)
	assert.Contains(t, gotQuery, "radius=25000")
	assert.Contains(t, gotQuery, "limit=1")
}
