package clock

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for due dates and creation dates.
const DateLayout = "2006-01-02"

// Date is a calendar day rendered as YYYY-MM-DD. Lexical order equals chronological order.
type Date string

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns the wall clock in UTC.
func System() Clock {
	return systemClock{}
}

// FixedClock always reports the same instant. Used by tests and the CLI --date flag.
type FixedClock struct {
	At time.Time
}

// Now implements Clock.
func (c FixedClock) Now() time.Time { return c.At }

// Fixed returns a clock pinned to the start of the given day.
func Fixed(day Date) FixedClock {
	t, err := day.Time()
	if err != nil {
		panic(fmt.Sprintf("clock: invalid fixed date %q", day))
	}
	return FixedClock{At: t}
}

// Today returns the current calendar day of c.
func Today(c Clock) Date {
	return DateOf(c.Now())
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Date {
	return Date(t.UTC().Format(DateLayout))
}

// ParseDate validates raw and returns it as a Date.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", raw, err)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of d.
func (d Date) Time() (time.Time, error) {
	return time.Parse(DateLayout, string(d))
}

// AddDays shifts d by n calendar days. Invalid dates are returned unchanged.
func (d Date) AddDays(n int) Date {
	t, err := d.Time()
	if err != nil {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d < other }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d > other }

// IsZero reports whether d is unset.
func (d Date) IsZero() bool { return d == "" }

// DaysUntil returns the signed number of days from d to other.
func (d Date) DaysUntil(other Date) int {
	from, err := d.Time()
	if err != nil {
		return 0
	}
	to, err := other.Time()
	if err != nil {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}

// String implements fmt.Stringer.
func (d Date) String() string { return string(d) }
