package atmos

// ObservationSet holds observations keyed by canonical variable name while
// preserving insertion order for display. Setting an existing name overwrites
// its value in place.
type ObservationSet struct {
	order []string
	byKey map[string]Observation
}

// NewObservationSet returns an empty set.
func NewObservationSet() *ObservationSet {
	return &ObservationSet{byKey: make(map[string]Observation)}
}

// Set inserts or updates the observation for name.
func (s *ObservationSet) Set(name string, value float64, unit string) {
	if _, ok := s.byKey[name]; !ok {
		s.order = append(s.order, name)
	}
	s.byKey[name] = Observation{Name: name, Value: value, Unit: unit}
}

// Has reports whether name is present.
func (s *ObservationSet) Has(name string) bool {
	_, ok := s.byKey[name]
	return ok
}

// Get returns the observation for name, if present.
func (s *ObservationSet) Get(name string) (Observation, bool) {
	o, ok := s.byKey[name]
	return o, ok
}

// List returns the observations in insertion order.
func (s *ObservationSet) List() []Observation {
	out := make([]Observation, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byKey[name])
	}
	return out
}

// Len returns the number of distinct observations.
func (s *ObservationSet) Len() int {
	return len(s.order)
}
