package bell

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ErrInvalidRange indicates a range whose start falls after its end.
var ErrInvalidRange = errors.New("vacation: range start must not be after end")

// Date is a calendar date without a time-of-day component. It marshals as
// "YYYY-MM-DD".
type Date struct {
	Year  int        `json:"-"`
	Month time.Month `json:"-"`
	Day   int        `json:"-"`
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("vacation: parsing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf truncates an instant to its calendar date in the instant's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String formats the date as "YYYY-MM-DD".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Time returns the date at midnight UTC, for ordering arithmetic.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the weekday tag for the date.
func (d Date) Weekday() Weekday {
	return WeekdayOf(d.Time().Weekday())
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d falls strictly after other.
func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// MarshalJSON encodes the date as a "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string. Empty strings and null decode
// to the zero date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is an inclusive calendar interval.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Validate checks that the range is well-ordered.
func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return ErrInvalidRange
	}
	return nil
}

// Contains reports whether the date falls within the range, bounds included.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// VacationSchedule globally suppresses bell firing during its ranges while
// enabled. Ranges are additive: overlaps are never merged or deduplicated.
// The whole schedule is replaced as one value at the transport boundary.
type VacationSchedule struct {
	Enabled bool        `json:"enabled"`
	Ranges  []DateRange `json:"ranges"`
}

// AddRange inserts a range keeping Ranges sorted by start ascending. Ranges
// with equal starts keep their insertion order.
func (v *VacationSchedule) AddRange(r DateRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	at := len(v.Ranges)
	for i, existing := range v.Ranges {
		if existing.Start.After(r.Start) {
			at = i
			break
		}
	}
	v.Ranges = append(v.Ranges, DateRange{})
	copy(v.Ranges[at+1:], v.Ranges[at:])
	v.Ranges[at] = r
	return nil
}

// RemoveRange deletes the range at index i. Out-of-bounds indexes are a no-op.
func (v *VacationSchedule) RemoveRange(i int) {
	if i < 0 || i >= len(v.Ranges) {
		return
	}
	v.Ranges = append(v.Ranges[:i], v.Ranges[i+1:]...)
}

// IsSuppressed reports whether the date falls inside any range of an enabled
// schedule. Each range is evaluated independently.
func (v VacationSchedule) IsSuppressed(d Date) bool {
	if !v.Enabled {
		return false
	}
	for _, r := range v.Ranges {
		if r.Contains(d) {
			return true
		}
	}
	return false
}

// Clone returns a copy detached from the receiver's range slice.
func (v VacationSchedule) Clone() VacationSchedule {
	out := v
	out.Ranges = append([]DateRange(nil), v.Ranges...)
	return out
}
