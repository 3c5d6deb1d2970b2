// Package retention classifies lots by how close they are to their
// best-before date. It is the only place freshness is computed.
package retention

import (
	"strings"
	"time"
)

// Status is the freshness label of a lot, ordered from most to least urgent.
type Status string

const (
	StatusRed     Status = "red"
	StatusYellow  Status = "yellow"
	StatusGreen   Status = "green"
	StatusUnknown Status = "unknown"
)

// Default thresholds used when nothing is configured.
const (
	DefaultWarningDays  = 30
	DefaultCriticalDays = 14
)

const dateLayout = "2006-01-02"

// Policy holds the two day-thresholds. CriticalDays never exceeds WarningDays.
type Policy struct {
	WarningDays  int `json:"warning_days"`
	CriticalDays int `json:"critical_days"`
}

// NewPolicy clamps both values to be non-negative and critical to warning.
func NewPolicy(warning, critical int) Policy {
	if warning < 0 {
		warning = 0
	}
	if critical < 0 {
		critical = 0
	}
	if critical > warning {
		critical = warning
	}
	return Policy{WarningDays: warning, CriticalDays: critical}
}

// DefaultPolicy returns the 30/14 thresholds.
func DefaultPolicy() Policy {
	return Policy{WarningDays: DefaultWarningDays, CriticalDays: DefaultCriticalDays}
}

// Classify labels a best-before date relative to today. A nil, empty or
// malformed date is StatusUnknown.
func (p Policy) Classify(bestBefore *string, today time.Time) Status {
	days, ok := DaysLeft(bestBefore, today)
	if !ok {
		return StatusUnknown
	}
	switch {
	case days <= p.CriticalDays:
		return StatusRed
	case days <= p.WarningDays:
		return StatusYellow
	default:
		return StatusGreen
	}
}

// DaysLeft returns bestBefore - today in whole calendar days.
func DaysLeft(bestBefore *string, today time.Time) (int, bool) {
	d, ok := ParseDate(bestBefore)
	if !ok {
		return 0, false
	}
	return DaysBetween(Truncate(today), d), true
}

// ParseDate parses a YYYY-MM-DD date as a UTC midnight.
func ParseDate(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Truncate drops the time of day, keeping the calendar date of t in its own zone.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from a to b. Both must be UTC midnights.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// Counts tallies statuses for a set of best-before dates.
type Counts struct {
	Red     int `json:"red"`
	Yellow  int `json:"yellow"`
	Green   int `json:"green"`
	Unknown int `json:"unknown"`
}

// Add records one classified status.
func (c *Counts) Add(s Status) {
	switch s {
	case StatusRed:
		c.Red++
	case StatusYellow:
		c.Yellow++
	case StatusGreen:
		c.Green++
	default:
		c.Unknown++
	}
}
