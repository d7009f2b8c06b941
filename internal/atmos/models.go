package atmos

// Location is a geographic point. Latitude and longitude are validated at the
// API boundary; the core assumes they are in range.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SourceDescriptor references one upstream data endpoint, real or templated.
// It carries retrieval metadata only, never data.
type SourceDescriptor struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	Note         string `json:"note,omitempty"`
	AuthRequired bool   `json:"auth_required"`
}

// Observation is one resolved environmental measurement, real or synthetic.
type Observation struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// TimeBlock describes the reference instant and display horizon of a
// synthesized bundle.
type TimeBlock struct {
	DatetimeISO  string `json:"datetime_iso"`
	HorizonHours int    `json:"horizon_hours"`
}

// DescriptorBundle is the raw-mode response shape: source references and
// optional auxiliary artifacts, no computed values.
type DescriptorBundle struct {
	Location  Location           `json:"location"`
	Timestamp string             `json:"timestamp"`
	Sources   []SourceDescriptor `json:"sources"`
	Artifacts map[string]any     `json:"artifacts,omitempty"`
}

// ExtraContext carries free-form notes plus the fallback provenance: the set
// of variable names whose final value was synthetic rather than measured.
type ExtraContext struct {
	PrimaryMetric      string   `json:"primary_metric,omitempty"`
	Notes              string   `json:"notes"`
	FallbackProvenance []string `json:"fallback_provenance"`
}

// SynthesizedBundle is the predict-mode response shape: resolved per-variable
// values with provenance, plus the upstream sources consulted.
type SynthesizedBundle struct {
	LocationName string             `json:"location_name"`
	Point        Location           `json:"point"`
	Time         TimeBlock          `json:"time"`
	Observations []Observation      `json:"recent_observations"`
	ExtraContext ExtraContext       `json:"extra_context"`
	Sources      []SourceDescriptor `json:"_sources,omitempty"`
}

// SeriesStats summarizes a raw series of ground observations.
type SeriesStats struct {
	Mean float64 `json:"mean"`
	P90  float64 `json:"p90"`
	Last float64 `json:"last"`
}
