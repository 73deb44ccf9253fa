// Package filter evaluates dashboard filter criteria against assets and tasks.
package filter

import (
	"strings"
	"time"
)

// Record is the narrow view of an asset or task that criteria are evaluated
// against. Optional fields report whether the record carries a value.
type Record interface {
	Label() string
	Description() string
	Category() string
	Status() (string, bool)
	Priority() (string, bool)
	Completed() (bool, bool)
	Date() (time.Time, bool)
}

// DateRange bounds a record's date. Either end may be zero, and both ends are inclusive.
type DateRange struct {
	From time.Time `json:"from,omitzero"`
	To   time.Time `json:"to,omitzero"`
}

// Criteria holds the active filters. An empty field places no constraint.
type Criteria struct {
	Search    string     `json:"search,omitempty"`
	Type      string     `json:"type,omitempty"`
	Status    string     `json:"status,omitempty"`
	Priority  string     `json:"priority,omitempty"`
	DateRange *DateRange `json:"date_range,omitempty"`
	Completed *bool      `json:"completed,omitempty"`
}

// Criterion keys, used by Without and ParseCriteria.
const (
	KeySearch    = "search"
	KeyType      = "type"
	KeyStatus    = "status"
	KeyPriority  = "priority"
	KeyDateRange = "date_range"
	KeyCompleted = "completed"
)

// Matches reports whether record satisfies every active criterion.
func Matches(record Record, c Criteria) bool {
	return c.matchesSearch(record) &&
		c.matchesEnums(record) &&
		c.matchesCompleted(record) &&
		c.matchesDateRange(record)
}

// Apply returns the items matching c, preserving order. The input slice is not modified.
func Apply[T Record](items []T, c Criteria) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if Matches(item, c) {
			out = append(out, item)
		}
	}
	return out
}

func (c Criteria) matchesSearch(record Record) bool {
	if c.Search == "" {
		return true
	}
	text := strings.Join([]string{record.Label(), record.Description(), record.Category()}, " ")
	return strings.Contains(strings.ToLower(text), strings.ToLower(c.Search))
}

func (c Criteria) matchesEnums(record Record) bool {
	if c.Type != "" && record.Category() != c.Type {
		return false
	}
	if c.Status != "" {
		status, ok := record.Status()
		if !ok || status != c.Status {
			return false
		}
	}
	if c.Priority != "" {
		priority, ok := record.Priority()
		if !ok || priority != c.Priority {
			return false
		}
	}
	return true
}

func (c Criteria) matchesCompleted(record Record) bool {
	if c.Completed == nil {
		return true
	}
	completed, ok := record.Completed()
	return ok && completed == *c.Completed
}

func (c Criteria) matchesDateRange(record Record) bool {
	if c.DateRange == nil || (c.DateRange.From.IsZero() && c.DateRange.To.IsZero()) {
		return true
	}
	date, ok := record.Date()
	if !ok {
		return false
	}
	if !c.DateRange.From.IsZero() && date.Before(c.DateRange.From) {
		return false
	}
	if !c.DateRange.To.IsZero() && date.After(c.DateRange.To) {
		return false
	}
	return true
}

// ActiveCount returns how many criteria are set.
func (c Criteria) ActiveCount() int {
	n := 0
	for _, set := range []bool{
		c.Search != "",
		c.Type != "",
		c.Status != "",
		c.Priority != "",
		c.DateRange != nil && (!c.DateRange.From.IsZero() || !c.DateRange.To.IsZero()),
		c.Completed != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// HasActive reports whether any criterion is set.
func (c Criteria) HasActive() bool {
	return c.ActiveCount() > 0
}

// Without returns a copy of c with the named criterion cleared.
func (c Criteria) Without(key string) Criteria {
	switch key {
	case KeySearch:
		c.Search = ""
	case KeyType:
		c.Type = ""
	case KeyStatus:
		c.Status = ""
	case KeyPriority:
		c.Priority = ""
	case KeyDateRange:
		c.DateRange = nil
	case KeyCompleted:
		c.Completed = nil
	}
	return c
}
