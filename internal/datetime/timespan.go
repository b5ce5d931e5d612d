package datetime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTimeSpan = errors.New("invalid time span")

// tick is the resolution of the time span text form.
const tick = 100 * time.Nanosecond

// FormatTimeSpan renders d as [-][d.]hh:mm:ss[.fffffff].
func FormatTimeSpan(d time.Duration) string {
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second

	if days > 0 {
		fmt.Fprintf(&b, "%d.", days)
	}
	fmt.Fprintf(&b, "%02d:%02d:%02d", hours, minutes, seconds)
	if ticks := d / tick; ticks > 0 {
		fmt.Fprintf(&b, ".%07d", ticks)
	}
	return b.String()
}

// ParseTimeSpan accepts [-][d.]hh:mm[:ss[.fffffff]].
func ParseTimeSpan(value string) (time.Duration, error) {
	s := strings.TrimSpace(value)
	invalid := fmt.Errorf("%w: %q", ErrInvalidTimeSpan, value)
	if s == "" {
		return 0, invalid
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var days int64
	if dot, colon := strings.IndexByte(s, '.'), strings.IndexByte(s, ':'); dot >= 0 && (colon < 0 || dot < colon) {
		n, err := strconv.ParseInt(s[:dot], 10, 64)
		if err != nil {
			return 0, invalid
		}
		days = n
		s = s[dot+1:]
	}

	var fraction string
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		fraction = s[dot+1:]
		s = s[:dot]
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, invalid
	}
	limits := []int64{23, 59, 59}
	units := []time.Duration{time.Hour, time.Minute, time.Second}

	total := time.Duration(days) * 24 * time.Hour
	for i, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n < 0 || n > limits[i] {
			return 0, invalid
		}
		total += time.Duration(n) * units[i]
	}

	if fraction != "" {
		if len(parts) != 3 || len(fraction) > 7 {
			return 0, invalid
		}
		n, err := strconv.ParseInt(fraction+strings.Repeat("0", 7-len(fraction)), 10, 64)
		if err != nil {
			return 0, invalid
		}
		total += time.Duration(n) * tick
	}

	if negative {
		total = -total
	}
	return total, nil
}
