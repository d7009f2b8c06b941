package timeutil

import (
	"fmt"
	"time"
)

// ParseWhen parses an ISO-8601 timestamp ("Z" or numeric offset suffix) and
// normalizes it to UTC. An empty string means "now".
func ParseWhen(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ISO formats a timestamp as ISO-8601 in UTC with a "Z" suffix.
func ISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Range returns the window [center-back, center+fwd].
func Range(center time.Time, back, fwd time.Duration) (time.Time, time.Time) {
	return center.Add(-back), center.Add(fwd)
}
