// Package locname resolves a display name for a geographic point via reverse
// geocoding. Best effort only: any failure, or an unconfigured API key,
// yields "Unknown".
package locname

import (
	"github.com/kelvins/geocoder"
	"go.uber.org/zap"
)

const unknown = "Unknown"

// Resolver reverse-geocodes points into place names.
type Resolver struct {
	enabled bool
	log     *zap.Logger
}

// NewResolver configures the geocoder. The API key is process-wide in the
// underlying library, so this must be called once at startup.
func NewResolver(apiKey string, log *zap.Logger) *Resolver {
	if apiKey != "" {
		geocoder.ApiKey = apiKey
	}
	return &Resolver{enabled: apiKey != "", log: log}
}

// Resolve returns a short place name for the point, or "Unknown".
func (r *Resolver) Resolve(lat, lon float64) string {
	if !r.enabled {
		return unknown
	}

	addresses, err := geocoder.GeocodingReverse(geocoder.Location{Latitude: lat, Longitude: lon})
	if err != nil || len(addresses) == 0 {
		r.log.Debug("reverse geocoding failed", zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		return unknown
	}

	addr := addresses[0]
	switch {
	case addr.City != "" && addr.Country != "":
		return addr.City + ", " + addr.Country
	case addr.City != "":
		return addr.City
	case addr.Country != "":
		return addr.Country
	}
	return unknown
}
