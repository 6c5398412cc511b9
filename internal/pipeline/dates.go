package pipeline

import (
	"strings"
	"time"
)

// Layouts seen in the source exports: plain SQL timestamps, the T-separated
// variant row_to_json produces, RFC3339 with zone, and bare dates.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// parseDate parses a date-like text field. Unparseable or missing input
// yields nil, never an error; that is the recovery policy for every date in
// the source data.
func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
