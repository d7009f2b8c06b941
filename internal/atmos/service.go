package atmos

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openatmos/airhealth-api/internal/synth"
	"github.com/openatmos/airhealth-api/internal/timeutil"
)

// Reanalysis fetches point scalars from a gridded reanalysis archive.
// Temperature and SkinTemp are returned in °C, Humidity in %, WindSpeed as the
// 10 m vector magnitude in m/s. Absence (missing credentials, empty subset,
// transport failure) is reported via the Result, never as an error.
type Reanalysis interface {
	Temperature(ctx context.Context, lat, lon float64, when time.Time) Result
	Humidity(ctx context.Context, lat, lon float64, when time.Time) Result
	SkinTemp(ctx context.Context, lat, lon float64, when time.Time) Result
	WindSpeed(ctx context.Context, lat, lon float64, when time.Time) Result
	URLTemplates(variables []string) []SourceDescriptor
}

// PrecipSource fetches a satellite-derived precipitation rate in mm/h for the
// grid cell nearest a point.
type PrecipSource interface {
	Rate(ctx context.Context, lat, lon float64, when time.Time, radiusCells int) Result
	Templates(when time.Time, hoursBack, hoursFwd int) []SourceDescriptor
}

// GroundStations looks up the latest per-sensor values from the nearest
// ground air-quality station within a radius. An empty slice means no usable
// data; the descriptor note explains why.
type GroundStations interface {
	Latest(ctx context.Context, lat, lon, radiusKM float64) ([]Observation, SourceDescriptor)
}

// FallbackNetwork is a secondary air-quality network consulted when the
// primary station lookup has gaps. Sample returns the provider's raw payload
// for traceability in descriptor mode.
type FallbackNetwork interface {
	Latest(ctx context.Context, lat, lon, distanceMiles float64) ([]Observation, SourceDescriptor)
	Sample(ctx context.Context, lat, lon, distanceMiles float64) (any, SourceDescriptor)
}

// Imagery builds satellite snapshot references. Never fetched.
type Imagery interface {
	Snapshot(lat, lon float64, when time.Time, layer string) SourceDescriptor
}

// ArchiveCatalog provides static archive search templates for raw mode.
type ArchiveCatalog interface {
	TemperatureSources() []SourceDescriptor
	OceanWindSources() []SourceDescriptor
}

// NameResolver turns a point into a human-readable place name, best effort.
type NameResolver interface {
	Resolve(lat, lon float64) string
}

// Service composes adapter results into response bundles. Per variable it
// tries the live adapter(s) in priority order and falls back to a
// deterministic synthetic value, recording the variable name in the bundle's
// fallback provenance when no live value was found. Everything is
// request-scoped; the service itself holds no mutable state.
type Service struct {
	reanalysis Reanalysis
	precip     PrecipSource
	ground     GroundStations
	fallback   FallbackNetwork
	imagery    Imagery
	archive    ArchiveCatalog
	names      NameResolver
	log        *zap.Logger
}

// NewService wires the composition policy to its adapters.
func NewService(re Reanalysis, precip PrecipSource, ground GroundStations, fallback FallbackNetwork, imagery Imagery, archive ArchiveCatalog, names NameResolver, log *zap.Logger) *Service {
	return &Service{
		reanalysis: re,
		precip:     precip,
		ground:     ground,
		fallback:   fallback,
		imagery:    imagery,
		archive:    archive,
		names:      names,
		log:        log,
	}
}

// BundleRequest carries the validated request fields shared by every domain.
type BundleRequest struct {
	Location     Location
	When         time.Time
	RadiusKM     float64
	LocationName string
}

// AirQualityRequest is the air-quality domain request.
type AirQualityRequest struct {
	BundleRequest
	IncludeGround bool
	IncludeSat    bool
	GIBSLayer     string
}

// PrecipRequest is the precipitation domain request.
type PrecipRequest struct {
	BundleRequest
	HoursBack int
	HoursFwd  int
}

// TemperatureRequest is the temperature domain request.
type TemperatureRequest struct {
	BundleRequest
	DaysBack int
	DaysFwd  int
}

// WindRequest is the wind domain request.
type WindRequest struct {
	BundleRequest
	HoursBack int
	HoursFwd  int
}

func (s *Service) displayName(req BundleRequest) string {
	if req.LocationName != "" {
		return req.LocationName
	}
	return s.names.Resolve(req.Location.Lat, req.Location.Lon)
}

// =========================
// AIR QUALITY
// =========================

// AirQualityRaw returns source references for the air-quality archives, plus
// ground-station statistics and a fallback-network sample as artifacts. This
// is the one raw path that queries ground stations live.
func (s *Service) AirQualityRaw(ctx context.Context, req AirQualityRequest) DescriptorBundle {
	sources := []SourceDescriptor{}
	artifacts := map[string]any{}

	if req.IncludeSat {
		sources = append(sources, s.imagery.Snapshot(req.Location.Lat, req.Location.Lon, req.When, req.GIBSLayer))
	}

	if req.IncludeGround {
		obs, src := s.ground.Latest(ctx, req.Location.Lat, req.Location.Lon, req.RadiusKM)
		sources = append(sources, src)

		series := map[string][]float64{"PM2.5": nil, "NO2": nil, "O3": nil}
		for _, o := range obs {
			if _, ok := series[o.Name]; ok {
				series[o.Name] = append(series[o.Name], o.Value)
			}
		}
		artifacts["openaq_stats"] = map[string]*SeriesStats{
			"pm25": Summarize(series["PM2.5"]),
			"no2":  Summarize(series["NO2"]),
			"o3":   Summarize(series["O3"]),
		}

		// Fallback-network coverage is US-centric; the sample may be empty
		// elsewhere.
		sample, fbSrc := s.fallback.Sample(ctx, req.Location.Lat, req.Location.Lon, req.RadiusKM*0.621)
		sources = append(sources, fbSrc)
		artifacts["airnow_sample"] = sample
	}

	return DescriptorBundle{
		Location:  req.Location,
		Timestamp: timeutil.ISO(req.When),
		Sources:   sources,
		Artifacts: artifacts,
	}
}

// AirQualityPredict resolves PM2.5, NO2 and O3 through the fallback chain:
// nearest ground station, then the secondary network, then a deterministic
// synthetic value.
func (s *Service) AirQualityPredict(ctx context.Context, req AirQualityRequest) SynthesizedBundle {
	lat, lon := req.Location.Lat, req.Location.Lon
	iso := timeutil.ISO(req.When)

	set := NewObservationSet()
	sources := []SourceDescriptor{}
	provenance := []string{}

	if req.IncludeGround {
		obs, src := s.ground.Latest(ctx, lat, lon, req.RadiusKM)
		for _, o := range obs {
			set.Set(o.Name, o.Value, o.Unit)
		}
		sources = append(sources, src)
	}

	// Secondary network, consulted once if the primary left gaps.
	var secondary []Observation
	secondaryTried := false
	lookupSecondary := func(name string) (Observation, bool) {
		if !secondaryTried {
			secondaryTried = true
			var src SourceDescriptor
			secondary, src = s.fallback.Latest(ctx, lat, lon, req.RadiusKM*0.621)
			sources = append(sources, src)
		}
		for _, o := range secondary {
			if o.Name == name {
				return o, true
			}
		}
		return Observation{}, false
	}

	type pollutant struct {
		name     string
		unit     string
		lo, hi   float64
		decimals int
	}
	for _, p := range []pollutant{
		{"PM2.5", "µg/m³", 5, 120, 1},
		{"NO2", "ppb", 5, 100, 0},
		{"O3", "ppb", 10, 120, 0},
	} {
		if set.Has(p.name) {
			continue
		}
		if o, ok := lookupSecondary(p.name); ok {
			set.Set(o.Name, o.Value, o.Unit)
			continue
		}
		set.Set(p.name, synth.Uniform(lat, lon, iso, p.name, p.lo, p.hi, p.decimals), p.unit)
		provenance = append(provenance, p.name)
	}

	return SynthesizedBundle{
		LocationName: s.displayName(req.BundleRequest),
		Point:        req.Location,
		Time:         TimeBlock{DatetimeISO: iso, HorizonHours: 24},
		Observations: set.List(),
		ExtraContext: ExtraContext{
			PrimaryMetric:      "AQI",
			Notes:              "OpenAQ v3 latest (nearby) with AirNow fallback",
			FallbackProvenance: provenance,
		},
		Sources: sources,
	}
}

// =========================
// PRECIPITATION
// =========================

// PrecipitationRaw returns archive templates for the satellite precipitation
// product over the requested window. No live fetch.
func (s *Service) PrecipitationRaw(ctx context.Context, req PrecipRequest) DescriptorBundle {
	return DescriptorBundle{
		Location:  req.Location,
		Timestamp: timeutil.ISO(req.When),
		Sources:   s.precip.Templates(req.When, req.HoursBack, req.HoursFwd),
	}
}

// PrecipitationPredict resolves the precipitation rate plus complementary
// humidity and skin temperature from the reanalysis archive. The three
// fetches are independent and run concurrently.
func (s *Service) PrecipitationPredict(ctx context.Context, req PrecipRequest) SynthesizedBundle {
	lat, lon := req.Location.Lat, req.Location.Lon
	iso := timeutil.ISO(req.When)

	var (
		wg                    sync.WaitGroup
		rateRes, rhRes, tsRes Result
	)
	wg.Add(3)
	go func() { defer wg.Done(); rateRes = s.precip.Rate(ctx, lat, lon, req.When, 0) }()
	go func() { defer wg.Done(); rhRes = s.reanalysis.Humidity(ctx, lat, lon, req.When) }()
	go func() { defer wg.Done(); tsRes = s.reanalysis.SkinTemp(ctx, lat, lon, req.When) }()
	wg.Wait()

	set := NewObservationSet()
	provenance := []string{}

	rate := rateRes.Value
	if !rateRes.OK {
		// Product of two independent uniforms scaled to [0,12]: biased toward
		// low rates on purpose.
		u1 := synth.Uniform(lat, lon, iso, "imerg_rate_u1", 0, 1, 3)
		u2 := synth.Uniform(lat, lon, iso, "imerg_rate_u2", 0, 1, 3)
		rate = synth.Round(u1*u2*12.0, 2)
		provenance = append(provenance, "imerg_rate")
	}
	set.Set("imerg_rate", rate, "mm/h")

	rh := rhRes.Value
	if !rhRes.OK {
		rh = synth.Uniform(lat, lon, iso, "humidity", 35, 95, 0)
		provenance = append(provenance, "humidity")
	}
	set.Set("humidity", rh, "%")

	ts := tsRes.Value
	if !tsRes.OK {
		ts = synth.Uniform(lat, lon, iso, "skin_temp", 5, 35, 1)
		provenance = append(provenance, "skin_temp")
	}
	set.Set("skin_temp", ts, "°C")

	horizon := req.HoursFwd
	if horizon < 24 {
		horizon = 24
	}

	sources := append(append(rateRes.Sources, rhRes.Sources...), tsRes.Sources...)

	return SynthesizedBundle{
		LocationName: s.displayName(req.BundleRequest),
		Point:        req.Location,
		Time:         TimeBlock{DatetimeISO: iso, HorizonHours: horizon},
		Observations: set.List(),
		ExtraContext: ExtraContext{
			Notes:              "IMERG V07 + MERRA-2, deterministic backfill on gaps",
			FallbackProvenance: provenance,
		},
		Sources: sources,
	}
}

// =========================
// TEMPERATURE
// =========================

// TemperatureRaw returns archive templates for daily temperature products plus
// a cloud-top imagery snapshot reference. No live fetch.
func (s *Service) TemperatureRaw(ctx context.Context, req TemperatureRequest) DescriptorBundle {
	sources := []SourceDescriptor{}
	sources = append(sources, s.archive.TemperatureSources()...)
	sources = append(sources, s.reanalysis.URLTemplates([]string{"T2M", "TMAX", "TMIN", "CLD"})...)
	sources = append(sources, s.imagery.Snapshot(req.Location.Lat, req.Location.Lon, req.When, "MODIS_Terra_Cloud_Top_Properties"))

	return DescriptorBundle{
		Location:  req.Location,
		Timestamp: timeutil.ISO(req.When),
		Sources:   sources,
	}
}

// TemperaturePredict resolves point temperature and humidity from the
// reanalysis archive, then derives the daily extremes from the resolved
// temperature. Derived values never enter provenance; cloud cover has no live
// path and always does.
func (s *Service) TemperaturePredict(ctx context.Context, req TemperatureRequest) SynthesizedBundle {
	lat, lon := req.Location.Lat, req.Location.Lon
	iso := timeutil.ISO(req.When)

	var (
		wg          sync.WaitGroup
		tRes, rhRes Result
	)
	wg.Add(2)
	go func() { defer wg.Done(); tRes = s.reanalysis.Temperature(ctx, lat, lon, req.When) }()
	go func() { defer wg.Done(); rhRes = s.reanalysis.Humidity(ctx, lat, lon, req.When) }()
	wg.Wait()

	set := NewObservationSet()
	provenance := []string{}

	temp := tRes.Value
	if !tRes.OK {
		temp = synth.Uniform(lat, lon, iso, "temperature", -5, 38, 1)
		provenance = append(provenance, "temperature")
	}
	set.Set("temperature", temp, "°C")

	rh := rhRes.Value
	if !rhRes.OK {
		rh = synth.Uniform(lat, lon, iso, "humidity", 20, 95, 0)
		provenance = append(provenance, "humidity")
	}
	set.Set("humidity", rh, "%")

	// Daily extremes ride on the resolved point temperature.
	tmax := synth.Round(temp+synth.Uniform(lat, lon, iso, "tmax_boost", 0.5, 6.5, 1), 1)
	tmin := synth.Round(temp-synth.Uniform(lat, lon, iso, "tmin_boost", 0.5, 7.0, 1), 1)
	set.Set("t_max_24h", tmax, "°C")
	set.Set("t_min_24h", tmin, "°C")

	cloud := synth.Uniform(lat, lon, iso, "cloud_cover", 5, 95, 0)
	set.Set("cloud_cover", cloud, "%")
	provenance = append(provenance, "cloud_cover")

	sources := append(tRes.Sources, rhRes.Sources...)

	return SynthesizedBundle{
		LocationName: s.displayName(req.BundleRequest),
		Point:        req.Location,
		Time:         TimeBlock{DatetimeISO: iso, HorizonHours: 72},
		Observations: set.List(),
		ExtraContext: ExtraContext{
			Notes:              "MERRA-2 T2M/RH2M, deterministic backfill and derived daily extremes",
			FallbackProvenance: provenance,
		},
		Sources: sources,
	}
}

// =========================
// WIND
// =========================

// WindRaw returns reanalysis wind templates plus ocean-wind archive search
// references. No live fetch.
func (s *Service) WindRaw(ctx context.Context, req WindRequest) DescriptorBundle {
	sources := []SourceDescriptor{}
	sources = append(sources, s.reanalysis.URLTemplates([]string{"U10M", "V10M", "PS", "MSLP"})...)
	sources = append(sources, s.archive.OceanWindSources()...)

	return DescriptorBundle{
		Location:  req.Location,
		Timestamp: timeutil.ISO(req.When),
		Sources:   sources,
	}
}

// WindPredict resolves the 10 m wind speed from the reanalysis vector
// components, converting m/s to km/h at this presentation boundary. Gust is
// derived from the resolved speed. Direction and pressure have no live path
// and are always synthetic and in provenance.
func (s *Service) WindPredict(ctx context.Context, req WindRequest) SynthesizedBundle {
	lat, lon := req.Location.Lat, req.Location.Lon
	iso := timeutil.ISO(req.When)

	set := NewObservationSet()
	provenance := []string{}

	var speedKmh, gustKmh float64
	res := s.reanalysis.WindSpeed(ctx, lat, lon, req.When)
	if res.OK {
		speedKmh = synth.Round(res.Value*3.6, 1)
		gustKmh = synth.Round(speedKmh*1.5, 1)
	} else {
		speedKmh = synth.Uniform(lat, lon, iso, "wind_speed", 2, 70, 1)
		provenance = append(provenance, "wind_speed")
		gustKmh = synth.Round(speedKmh*synth.Uniform(lat, lon, iso, "gust_factor", 1.3, 1.8, 2), 1)
		provenance = append(provenance, "wind_gust")
	}
	set.Set("wind_speed", speedKmh, "km/h")
	set.Set("wind_gust", gustKmh, "km/h")

	dir := synth.Uniform(lat, lon, iso, "wind_dir", 0, 360, 0)
	set.Set("wind_dir", dir, "°")
	provenance = append(provenance, "wind_dir")

	pressure := synth.Uniform(lat, lon, iso, "pressure", 800, 1020, 0)
	set.Set("pressure", pressure, "hPa")
	provenance = append(provenance, "pressure")

	horizon := req.HoursFwd
	if horizon < 48 {
		horizon = 48
	}

	return SynthesizedBundle{
		LocationName: s.displayName(req.BundleRequest),
		Point:        req.Location,
		Time:         TimeBlock{DatetimeISO: iso, HorizonHours: horizon},
		Observations: set.List(),
		ExtraContext: ExtraContext{
			Notes:              "MERRA-2 U10M/V10M, deterministic backfill for speed/gust/dir/pressure",
			FallbackProvenance: provenance,
		},
		Sources: res.Sources,
	}
}
