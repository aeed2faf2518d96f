// Package tzone resolves the timezone labels stored on sessions and user
// profiles. Historical rows mix IANA zone names with legacy fixed-offset
// strings such as "UTC+05:30" or "GMT-7"; both forms are supported here so
// callers never need to care which generation of data they are reading.
package tzone

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Resolve returns a location for the supplied label. IANA names are resolved
// through the zone database; legacy fixed-offset strings become fixed zones.
// The second result is false when the label is not recognized in either form.
func Resolve(label string) (*time.Location, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, false
	}

	if strings.EqualFold(label, "UTC") || strings.EqualFold(label, "GMT") {
		return time.UTC, true
	}

	if minutes, ok := ParseFixedOffset(label); ok {
		return FixedOffsetZone(minutes), true
	}

	loc, err := time.LoadLocation(label)
	if err != nil {
		return nil, false
	}
	return loc, true
}

// ParseFixedOffset extracts the minute offset encoded in a legacy label.
// Accepted forms: "UTC+05:30", "GMT-7", "+05:30", "UTC+5". The second result
// is false for anything else.
func ParseFixedOffset(label string) (int, bool) {
	s := strings.TrimSpace(label)
	upper := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(upper, "UTC"):
		s = s[3:]
	case strings.HasPrefix(upper, "GMT"):
		s = s[3:]
	}
	if s == "" {
		return 0, false
	}

	sign := 1
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	default:
		return 0, false
	}
	if s == "" {
		return 0, false
	}

	hoursPart := s
	minutesPart := ""
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		hoursPart = s[:idx]
		minutesPart = s[idx+1:]
	}

	hours, err := strconv.Atoi(hoursPart)
	if err != nil || hours < 0 || hours > 14 {
		return 0, false
	}
	minutes := 0
	if minutesPart != "" {
		minutes, err = strconv.Atoi(minutesPart)
		if err != nil || minutes < 0 || minutes > 59 {
			return 0, false
		}
	}

	return sign * (hours*60 + minutes), true
}

// FixedOffsetZone builds a fixed zone named after its UTC offset.
func FixedOffsetZone(minutes int) *time.Location {
	sign := "+"
	abs := minutes
	if minutes < 0 {
		sign = "-"
		abs = -minutes
	}
	name := fmt.Sprintf("UTC%s%02d:%02d", sign, abs/60, abs%60)
	return time.FixedZone(name, minutes*60)
}
