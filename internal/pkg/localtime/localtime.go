package localtime

import (
	"fmt"
	"time"
)

// Resolver converts UTC instants to the configured local timezone and
// computes local calendar-day boundaries. It is constructed once at startup
// and passed to every component that groups events by day; there is no
// process-wide timezone global.
type Resolver struct {
	loc *time.Location
}

// NewResolver loads the IANA timezone once. Every "same day" comparison in
// the system goes through the returned resolver so midnight-crossing shifts
// behave consistently.
func NewResolver(timezone string) (*Resolver, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Resolver{loc: loc}, nil
}

// MustResolver is NewResolver for tests and fixed-zone callers.
func MustResolver(timezone string) *Resolver {
	r, err := NewResolver(timezone)
	if err != nil {
		panic(err)
	}
	return r
}

// Location exposes the configured timezone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// ToUTC normalizes any timestamp to UTC. Naive timestamps (zero location
// information is not representable in time.Time, so a UTC-tagged value is
// assumed already normalized) pass through unchanged.
func (r *Resolver) ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// Local converts a UTC instant into the configured timezone.
func (r *Resolver) Local(t time.Time) time.Time {
	return t.In(r.loc)
}

// DayKey formats the local calendar date containing t as "2006-01-02".
func (r *Resolver) DayKey(t time.Time) string {
	return t.In(r.loc).Format("2006-01-02")
}

// DayBounds returns [dayStart, dayEnd) in UTC bounding the local calendar
// day containing t. dayEnd is the start of the following local day, so DST
// transitions yield 23h or 25h days rather than a fixed 24h window.
func (r *Resolver) DayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(r.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.loc)
	end := start.AddDate(0, 0, 1)
	return start.UTC(), end.UTC()
}

// DayStart returns the UTC instant at which the local day containing t begins.
func (r *Resolver) DayStart(t time.Time) time.Time {
	start, _ := r.DayBounds(t)
	return start
}

// DayDate returns the local calendar date containing t as a canonical
// date value (midnight UTC). Entities keyed by local day store this value;
// its Weekday() is the local weekday.
func (r *Resolver) DayDate(t time.Time) time.Time {
	local := t.In(r.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// SameLocalDay reports whether a and b fall on the same local calendar day.
func (r *Resolver) SameLocalDay(a, b time.Time) bool {
	al, bl := a.In(r.loc), b.In(r.loc)
	return al.Year() == bl.Year() && al.YearDay() == bl.YearDay()
}

// At pins a local time-of-day (minutes since local midnight) onto the local
// day containing ref, returning the UTC instant.
func (r *Resolver) At(ref time.Time, minuteOfDay int) time.Time {
	local := ref.In(r.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, minuteOfDay, 0, 0, r.loc).UTC()
}

// DayAt pins a local time-of-day onto a canonical local-day date (as
// returned by DayDate), yielding the UTC instant.
func (r *Resolver) DayAt(day time.Time, minuteOfDay int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, minuteOfDay, 0, 0, r.loc).UTC()
}

// MinuteOfDay returns t's local time-of-day in minutes since midnight.
func (r *Resolver) MinuteOfDay(t time.Time) int {
	local := t.In(r.loc)
	return local.Hour()*60 + local.Minute()
}

// Weekday returns the local weekday of the day containing t.
func (r *Resolver) Weekday(t time.Time) time.Weekday {
	return t.In(r.loc).Weekday()
}
