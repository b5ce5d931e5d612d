// Package datetime parses the loosely formatted timestamps that flight
// queries and legacy snapshots carry.
package datetime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidDateFormat = errors.New("invalid date format")

const DateLayout = "2006-01-02"

// Zone-less layouts are interpreted in Parser.Location. Single-digit month
// and day are accepted because "1" and "2" parse one or two digits.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-1-2T15:04:05Z07:00",
	"2006-1-2T15:04:05",
	"2006-1-2T15:04",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
}

// Time-only layouts resolve against the calendar date of Parser.Now.
var timeOfDayLayouts = []string{
	"15:04:05",
	"15:04",
}

type Parser struct {
	Location *time.Location
	Now      func() time.Time
}

func NewParser(loc *time.Location) *Parser {
	return &Parser{Location: loc, Now: time.Now}
}

func (p *Parser) Parse(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDateFormat)
	}
	loc := p.location()

	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	for _, layout := range timeOfDayLayouts {
		clock, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		y, m, d := p.now().In(loc).Date()
		return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), loc), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, value)
}

func (p *Parser) location() *time.Location {
	if p == nil || p.Location == nil {
		return time.Local
	}
	return p.Location
}

func (p *Parser) now() time.Time {
	if p == nil || p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// FormatDate renders the calendar date of t in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
