package legacy

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are the formats the legacy store used over its lifetime,
// tried in order.
var timestampLayouts = []string{
	"02/01/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a legacy wall-clock timestamp in loc and returns it
// in UTC. A nil or blank value yields nil without error.
func ParseTimestamp(value *string, loc *time.Location) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*value)
	if s == "" {
		return nil, nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			utc := t.UTC()
			return &utc, nil
		}
	}
	return nil, fmt.Errorf("unrecognised timestamp %q", s)
}

// IsTrue reports whether a legacy flag column holds a true value.
func IsTrue(value *string) bool {
	if value == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(*value)) {
	case "true", "t", "1", "yes", "y":
		return true
	default:
		return false
	}
}
