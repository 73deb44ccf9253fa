package filter

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts accepted for the from/to query parameters
var dateLayouts = []string{time.RFC3339, time.DateOnly}

// ParseCriteria builds Criteria from query parameters. Unparseable values are
// ignored rather than rejected, matching how the dashboard treats partial input.
func ParseCriteria(query func(key string) string) Criteria {
	c := Criteria{
		Search:   strings.TrimSpace(query(KeySearch)),
		Type:     strings.TrimSpace(query(KeyType)),
		Status:   strings.TrimSpace(query(KeyStatus)),
		Priority: strings.TrimSpace(query(KeyPriority)),
	}

	if raw := query(KeyCompleted); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			c.Completed = &b
		}
	}

	from, fromOK, _ := parseDate(query("from"))
	to, toOK, dayOnly := parseDate(query("to"))
	if dayOnly {
		// a bare date covers the whole day
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	if fromOK || toOK {
		c.DateRange = &DateRange{From: from, To: to}
	}

	return c
}

func parseDate(raw string) (t time.Time, ok bool, dayOnly bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true, layout == time.DateOnly
		}
	}
	return time.Time{}, false, false
}
