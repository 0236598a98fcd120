// Package schedule holds the calendar arithmetic for doctor availability:
// working-day checks, slot generation and busy-slot filtering. Everything
// here is pure; callers load doctors and booked times from the database
// and feed them in.
package schedule

import (
	"fmt"
	"time"
)

// Week holds one on/off flag per weekday.
type Week struct {
	Mon, Tue, Wed, Thu, Fri, Sat, Sun bool
}

// On reports whether the given weekday is flagged as working.
func (w Week) On(d time.Weekday) bool {
	switch d {
	case time.Monday:
		return w.Mon
	case time.Tuesday:
		return w.Tue
	case time.Wednesday:
		return w.Wed
	case time.Thursday:
		return w.Thu
	case time.Friday:
		return w.Fri
	case time.Saturday:
		return w.Sat
	case time.Sunday:
		return w.Sun
	}
	return false
}

// Period is an inclusive range of calendar dates during which a doctor
// does not take appointments (vacation, sick leave, business trip).
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether day falls inside the period. Both boundary
// dates count as inside.
func (p Period) Contains(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(DateOf(p.Start)) && !d.After(DateOf(p.End))
}

// Rule is one doctor's recurring weekly availability: which weekdays are
// working, the working window within a day, the fixed appointment length
// and any explicit off periods. Start, End and the slot offsets are
// expressed as time-of-day offsets from midnight.
type Rule struct {
	Week  Week
	Start time.Duration
	End   time.Duration
	Slot  time.Duration
	Off   []Period
}

// WorkingDay reports whether the doctor takes appointments on the given
// calendar date: the weekday flag must be set and the date must not fall
// inside any off period.
func (r Rule) WorkingDay(day time.Time) bool {
	if !r.Week.On(day.Weekday()) {
		return false
	}
	for _, p := range r.Off {
		if p.Contains(day) {
			return false
		}
	}
	return true
}

// Slots returns every candidate appointment start offset for a working
// window: Start, Start+Slot, ... up to the last one that still fits
// before End. A partial trailing slot is never produced. A misconfigured
// rule (Start >= End or Slot <= 0) yields no slots rather than an error.
func (r Rule) Slots() []time.Duration {
	if r.Slot <= 0 || r.Start >= r.End {
		return nil
	}
	var slots []time.Duration
	for t := r.Start; t+r.Slot <= r.End; t += r.Slot {
		slots = append(slots, t)
	}
	return slots
}

// DaySlots returns the candidate start offsets for a specific date, or
// nothing when the date is not a working day.
func (r Rule) DaySlots(day time.Time) []time.Duration {
	if !r.WorkingDay(day) {
		return nil
	}
	return r.Slots()
}

// Aligned reports whether t is a valid slot start under the rule: inside
// the working window, on the slot grid, with the full slot fitting
// before End.
func (r Rule) Aligned(t time.Duration) bool {
	if r.Slot <= 0 {
		return false
	}
	if t < r.Start || t+r.Slot > r.End {
		return false
	}
	return (t-r.Start)%r.Slot == 0
}

// AvailableDates lists the working dates from the day after `from`
// through `from`+horizonDays inclusive, ascending. The current date is
// never offered.
func AvailableDates(r Rule, from time.Time, horizonDays int) []time.Time {
	var dates []time.Time
	base := DateOf(from)
	end := base.AddDate(0, 0, horizonDays)
	for d := base.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if r.WorkingDay(d) {
			dates = append(dates, d)
		}
	}
	return dates
}

// FilterBusy returns the candidates whose start offset is not in the
// busy set, preserving order.
func FilterBusy(candidates []time.Duration, busy map[time.Duration]bool) []time.Duration {
	var free []time.Duration
	for _, t := range candidates {
		if !busy[t] {
			free = append(free, t)
		}
	}
	return free
}

// ParseClock parses a "HH:MM" time of day into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// FormatClock renders an offset from midnight as "HH:MM".
func FormatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// DateOf truncates a timestamp to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// At combines a calendar date with a time-of-day offset.
func At(day time.Time, t time.Duration) time.Time {
	return DateOf(day).Add(t)
}
