package providers

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/openatmos/airhealth-api/internal/atmos"
)

// AirNow queries the AirNow current-observations endpoint, the secondary
// air-quality network. Coverage is mostly US; values are AQI indices, not
// concentrations, so observations carry the unit "AQI". An API key is
// mandatory; without one the adapter reports absent with a template URL.
type AirNow struct {
	base    string
	apiKey  string
	fetcher *Fetcher
	log     *zap.Logger
}

// NewAirNow builds the fallback-network adapter.
func NewAirNow(base, apiKey string, fetcher *Fetcher, log *zap.Logger) *AirNow {
	return &AirNow{
		base:    strings.TrimRight(base, "/"),
		apiKey:  apiKey,
		fetcher: fetcher,
		log:     log,
	}
}

// airnowObservation is one entry of the current-observations payload.
type airnowObservation struct {
	DateObserved  string  `json:"DateObserved"`
	HourObserved  int     `json:"HourObserved"`
	ParameterName string  `json:"ParameterName"`
	AQI           float64 `json:"AQI"`
}

func (a *AirNow) missingKeySource() atmos.SourceDescriptor {
	return atmos.SourceDescriptor{
		Name: "AirNow observations",
		URL: a.base + "/aq/observation/latLong/current/" +
			"?format=application/json&latitude=..&longitude=..&distance=..&API_KEY=<REQUIRED>",
		Note:         "API key required",
		AuthRequired: true,
	}
}

func (a *AirNow) currentURL(lat, lon, distanceMiles float64) string {
	return fmt.Sprintf("%s/aq/observation/latLong/current/?format=application/json&latitude=%v&longitude=%v&distance=%v&API_KEY=%s",
		a.base, lat, lon, distanceMiles, a.apiKey)
}

func (a *AirNow) fetch(ctx context.Context, lat, lon, distanceMiles float64) ([]airnowObservation, atmos.SourceDescriptor, bool) {
	if a.apiKey == "" {
		return nil, a.missingKeySource(), false
	}

	url := a.currentURL(lat, lon, distanceMiles)

	var payload []airnowObservation
	if err := a.fetcher.GetJSON(ctx, url, &payload); err != nil {
		a.log.Debug("airnow fetch failed", zap.Error(err))
		return nil, atmos.SourceDescriptor{Name: "AirNow (error)", URL: url, Note: "check API key and parameters", AuthRequired: true}, false
	}

	return payload, atmos.SourceDescriptor{Name: "AirNow observations", URL: url, Note: "API key required", AuthRequired: true}, true
}

// Latest returns the nearby AQI readings mapped to canonical variable names.
func (a *AirNow) Latest(ctx context.Context, lat, lon, distanceMiles float64) ([]atmos.Observation, atmos.SourceDescriptor) {
	payload, src, ok := a.fetch(ctx, lat, lon, distanceMiles)
	if !ok {
		return nil, src
	}

	var observations []atmos.Observation
	for _, item := range payload {
		switch item.ParameterName {
		case "PM2.5", "NO2", "O3":
			observations = append(observations, atmos.Observation{
				Name:  item.ParameterName,
				Value: item.AQI,
				Unit:  "AQI",
			})
		}
	}
	return observations, src
}

// Sample returns the raw payload for traceability in descriptor mode.
func (a *AirNow) Sample(ctx context.Context, lat, lon, distanceMiles float64) (any, atmos.SourceDescriptor) {
	payload, src, ok := a.fetch(ctx, lat, lon, distanceMiles)
	if !ok {
		return map[string]string{"warning": src.Note}, src
	}
	return payload, src
}
