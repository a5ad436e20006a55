// Package calendar holds the one local-day definition used for every date
// decision: a fixed UTC offset, dates rendered as YYYY-MM-DD.
package calendar

import (
	"fmt"
	"time"
)

const (
	DateLayout           = "2006-01-02"
	DefaultOffsetHours   = 9
	minOffset, maxOffset = -12, 14
)

type Calendar struct {
	loc *time.Location
}

// New returns a calendar for a fixed offset in whole hours east of UTC.
func New(offsetHours int) (Calendar, error) {
	if offsetHours < minOffset || offsetHours > maxOffset {
		return Calendar{}, fmt.Errorf("utc offset %d out of range [%d, %d]", offsetHours, minOffset, maxOffset)
	}
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return Calendar{loc: time.FixedZone(name, offsetHours*3600)}, nil
}

// Default is the UTC+9 calendar.
func Default() Calendar {
	c, _ := New(DefaultOffsetHours)
	return c
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// DateOf is the local date of an instant.
func (c Calendar) DateOf(t time.Time) string {
	return t.In(c.Location()).Format(DateLayout)
}

// Parse returns local midnight of date.
func (c Calendar) Parse(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, c.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return t, nil
}

// Valid reports whether date is a well-formed YYYY-MM-DD date.
func (c Calendar) Valid(date string) bool {
	_, err := c.Parse(date)
	return err == nil
}

// AddDays shifts date by n days. Malformed input is returned unchanged.
func (c Calendar) AddDays(date string, n int) string {
	t, err := c.Parse(date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format(DateLayout)
}

// WeekStart is the Monday on or before date.
func (c Calendar) WeekStart(date string) string {
	t, err := c.Parse(date)
	if err != nil {
		return date
	}
	back := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -back).Format(DateLayout)
}

// MonthStart is the first day of date's month.
func (c Calendar) MonthStart(date string) string {
	t, err := c.Parse(date)
	if err != nil {
		return date
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.Location()).Format(DateLayout)
}

// NextMidnight is the first local midnight strictly after t.
func (c Calendar) NextMidnight(t time.Time) time.Time {
	local := t.In(c.Location())
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, c.Location())
}

// DaysBetween counts whole days from a to b; negative when b precedes a.
func (c Calendar) DaysBetween(a, b string) (int, error) {
	ta, err := c.Parse(a)
	if err != nil {
		return 0, err
	}
	tb, err := c.Parse(b)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}
