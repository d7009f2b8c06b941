package atmos

// Result is the outcome of one adapter fetch: either a value with provenance,
// or an explicit "unavailable". Missing credentials, no nearby station, empty
// payloads and transport errors all collapse into the absent case; they differ
// only in the descriptor note. The composition layer never special-cases them.
type Result struct {
	Value   float64
	OK      bool
	Sources []SourceDescriptor
}

// Ok builds a successful result.
func Ok(value float64, sources ...SourceDescriptor) Result {
	return Result{Value: value, OK: true, Sources: sources}
}

// Absent builds an unavailable result whose descriptors explain why.
func Absent(sources ...SourceDescriptor) Result {
	return Result{Sources: sources}
}
