package domain

import (
	"fmt"
	"time"
)

// Clock abstracts the current time so timestamp rules can be tested.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// PickerState is the step of the date/time selection flow.
type PickerState int

const (
	// PickerIdle means the selection is still the initial "now".
	PickerIdle PickerState = iota
	// PickerDateChosen means a calendar date has been applied.
	PickerDateChosen
	// PickerTimeChosen means a time of day has been applied after the date.
	PickerTimeChosen
)

func (s PickerState) String() string {
	switch s {
	case PickerIdle:
		return "idle"
	case PickerDateChosen:
		return "date_chosen"
	case PickerTimeChosen:
		return "time_chosen"
	default:
		return fmt.Sprintf("PickerState(%d)", int(s))
	}
}

// TimestampPicker couples a date selection and a time selection into the
// single instant attached to a new entry. The selection is never later than
// the clock's now.
type TimestampPicker struct {
	clock    Clock
	loc      *time.Location
	state    PickerState
	selected time.Time
}

// NewTimestampPicker starts a picker at the current instant.
func NewTimestampPicker(clock Clock, loc *time.Location) *TimestampPicker {
	if clock == nil {
		clock = SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &TimestampPicker{clock: clock, loc: loc, selected: clock.Now().In(loc)}
}

// ResumeTimestampPicker rebuilds a picker around a previously selected
// instant, for callers that keep the selection between requests. A selection
// in the future is clamped to now.
func ResumeTimestampPicker(clock Clock, loc *time.Location, selectedMs int64) *TimestampPicker {
	p := NewTimestampPicker(clock, loc)
	if selectedMs > 0 {
		p.selected = p.clamp(time.UnixMilli(selectedMs).In(p.loc))
	}
	return p
}

// State returns the current step of the flow.
func (p *TimestampPicker) State() PickerState { return p.state }

// Selected returns the working instant.
func (p *TimestampPicker) Selected() time.Time { return p.selected }

// Location returns the zone used to interpret calendar dates.
func (p *TimestampPicker) Location() *time.Location { return p.loc }

// MaxDate is the latest instant a date selector may offer.
func (p *TimestampPicker) MaxDate() time.Time { return p.clock.Now().In(p.loc) }

// PickDate applies a calendar date to the selection. For any date other than
// today the minute is reset to zero while the hour is kept. The combined
// instant is clamped to now. Dates after today are rejected.
func (p *TimestampPicker) PickDate(year int, month time.Month, day int) (time.Time, error) {
	now := p.clock.Now().In(p.loc)
	if month < time.January || month > time.December || day < 1 || day > daysIn(year, month) {
		return p.selected, fmt.Errorf("invalid date %04d-%02d-%02d", year, int(month), day)
	}
	if dateAfter(year, month, day, now) {
		return p.selected, ErrFutureTimestamp
	}

	s := p.selected
	minute := s.Minute()
	if !sameDate(year, month, day, now) {
		minute = 0
	}
	combined := time.Date(year, month, day, s.Hour(), minute, s.Second(), s.Nanosecond(), p.loc)

	p.selected = p.clamp(combined)
	p.state = PickerDateChosen
	return p.selected, nil
}

// PickTime applies a time of day to the selected date. A result later than
// now is rejected and the selection is left unchanged.
func (p *TimestampPicker) PickTime(hour, minute int) (time.Time, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return p.selected, fmt.Errorf("invalid time %02d:%02d", hour, minute)
	}
	s := p.selected
	combined := time.Date(s.Year(), s.Month(), s.Day(), hour, minute, s.Second(), s.Nanosecond(), p.loc)
	if combined.After(p.clock.Now()) {
		return p.selected, ErrFutureTimestamp
	}
	p.selected = combined
	p.state = PickerTimeChosen
	return p.selected, nil
}

// Commit returns the selection as epoch milliseconds, clamped to now.
func (p *TimestampPicker) Commit() int64 {
	p.selected = p.clamp(p.selected)
	return p.selected.UnixMilli()
}

func (p *TimestampPicker) clamp(t time.Time) time.Time {
	now := p.clock.Now().In(p.loc)
	if t.After(now) {
		return now
	}
	return t
}

func sameDate(year int, month time.Month, day int, t time.Time) bool {
	y, m, d := t.Date()
	return y == year && m == month && d == day
}

func dateAfter(year int, month time.Month, day int, t time.Time) bool {
	y, m, d := t.Date()
	if year != y {
		return year > y
	}
	if month != m {
		return month > m
	}
	return day > d
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
