package providers

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/openatmos/airhealth-api/internal/atmos"
)

// OpenAQ looks up the latest air-quality values from the nearest ground
// station via the v3 API: nearest location, then the station detail to map
// sensors to parameters, then the latest per-sensor values. Gas
// concentrations reported in ppm are normalized to ppb before returning.
type OpenAQ struct {
	base    string
	apiKey  string
	fetcher *Fetcher
	log     *zap.Logger
}

// NewOpenAQ builds the ground-station adapter.
func NewOpenAQ(base, apiKey string, fetcher *Fetcher, log *zap.Logger) *OpenAQ {
	return &OpenAQ{
		base:    strings.TrimRight(base, "/"),
		apiKey:  apiKey,
		fetcher: fetcher,
		log:     log,
	}
}

// wantedParams maps OpenAQ parameter names to canonical variable names.
var wantedParams = map[string]string{
	"pm25": "PM2.5",
	"no2":  "NO2",
	"o3":   "O3",
}

func (o *OpenAQ) opts() []RequestOption {
	if o.apiKey == "" {
		return nil
	}
	return []RequestOption{WithHeader("X-API-Key", o.apiKey)}
}

// Latest returns the canonical observations from the nearest station within
// radiusKM. The empty-slice cases (lookup failure, no nearby station, no
// station detail, no latest values) differ only in the descriptor note.
func (o *OpenAQ) Latest(ctx context.Context, lat, lon, radiusKM float64) ([]atmos.Observation, atmos.SourceDescriptor) {
	const note = "OpenAQ v3 locations→latest"
	meters := int(radiusKM * 1000)

	locsURL := fmt.Sprintf("%s/v3/locations?coordinates=%v,%v&radius=%d&limit=1&order_by=distance&sort=asc",
		o.base, lat, lon, meters)

	var locs struct {
		Results []struct {
			ID int64 `json:"id"`
		} `json:"results"`
	}
	if err := o.fetcher.GetJSON(ctx, locsURL, &locs, o.opts()...); err != nil {
		o.log.Debug("openaq locations lookup failed", zap.Error(err))
		return nil, atmos.SourceDescriptor{Name: "OpenAQ v3 (error)", URL: locsURL, Note: note, AuthRequired: true}
	}
	if len(locs.Results) == 0 {
		return nil, atmos.SourceDescriptor{Name: "OpenAQ locations", URL: locsURL, Note: "no nearby stations", AuthRequired: true}
	}
	locID := locs.Results[0].ID

	// Station detail maps sensor IDs to parameters.
	detailURL := fmt.Sprintf("%s/v3/locations/%d", o.base, locID)

	var detail struct {
		Results []struct {
			Sensors []struct {
				ID        int64 `json:"id"`
				Parameter struct {
					Name  string `json:"name"`
					Units string `json:"units"`
				} `json:"parameter"`
			} `json:"sensors"`
		} `json:"results"`
	}
	if err := o.fetcher.GetJSON(ctx, detailURL, &detail, o.opts()...); err != nil {
		o.log.Debug("openaq station detail failed", zap.Error(err))
		return nil, atmos.SourceDescriptor{Name: "OpenAQ v3 (error)", URL: detailURL, Note: note, AuthRequired: true}
	}
	if len(detail.Results) == 0 || len(detail.Results[0].Sensors) == 0 {
		return nil, atmos.SourceDescriptor{Name: "OpenAQ station detail", URL: detailURL, Note: "no station detail", AuthRequired: true}
	}

	type sensorMeta struct {
		name  string
		units string
	}
	sensors := make(map[int64]sensorMeta)
	for _, s := range detail.Results[0].Sensors {
		sensors[s.ID] = sensorMeta{name: strings.ToLower(s.Parameter.Name), units: s.Parameter.Units}
	}

	latestURL := fmt.Sprintf("%s/v3/locations/%d/latest", o.base, locID)

	var latest struct {
		Results []struct {
			SensorsID int64    `json:"sensorsId"`
			Value     *float64 `json:"value"`
		} `json:"results"`
	}
	if err := o.fetcher.GetJSON(ctx, latestURL, &latest, o.opts()...); err != nil {
		o.log.Debug("openaq latest failed", zap.Error(err))
		return nil, atmos.SourceDescriptor{Name: "OpenAQ v3 (error)", URL: latestURL, Note: note, AuthRequired: true}
	}

	var observations []atmos.Observation
	for _, r := range latest.Results {
		meta, ok := sensors[r.SensorsID]
		if !ok || r.Value == nil {
			continue
		}
		canonical, ok := wantedParams[meta.name]
		if !ok {
			continue
		}

		value, units := *r.Value, meta.units
		// Gas concentrations: ppm → ppb.
		if (meta.name == "no2" || meta.name == "o3") && units == "ppm" {
			value *= 1000.0
			units = "ppb"
		}
		observations = append(observations, atmos.Observation{Name: canonical, Value: value, Unit: units})
	}

	return observations, atmos.SourceDescriptor{
		Name:         "OpenAQ latest by location (v3)",
		URL:          latestURL,
		Note:         note,
		AuthRequired: true,
	}
}
