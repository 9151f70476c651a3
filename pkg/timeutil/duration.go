package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidDuration is returned when an ISO-8601 duration string cannot be parsed.
var ErrInvalidDuration = errors.New("invalid ISO-8601 duration")

// ErrInvalidFrequency is returned when a sampling frequency string cannot be parsed.
var ErrInvalidFrequency = errors.New("invalid frequency")

// Years and months in a duration use fixed approximations (1 month = 30 days,
// 1 year = 365 days). Durations are schedule intervals here, not calendar math;
// calendar-accurate month arithmetic lives in AddMonths/MonthsBetween.
const (
	secondsPerDay   = 24 * 60 * 60
	secondsPerWeek  = 7 * secondsPerDay
	secondsPerMonth = 30 * secondsPerDay
	secondsPerYear  = 365 * secondsPerDay
)

var isoDurationRe = regexp.MustCompile(
	`^P(?:(\d+(?:\.\d+)?)Y)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)W)?(?:(\d+(?:\.\d+)?)D)?` +
		`(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseDuration converts an ISO-8601 duration (e.g. "PT1H", "P1DT12H") to
// whole seconds. Malformed input, including the empty string, returns
// ErrInvalidDuration; it never silently defaults.
func ParseDuration(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidDuration)
	}
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	any := false
	var total float64
	factors := []float64{secondsPerYear, secondsPerMonth, secondsPerWeek, secondsPerDay, 3600, 60, 1}
	for i, factor := range factors {
		part := m[i+1]
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		total += v * factor
		any = true
	}
	if !any {
		// "P" or "PT" with no components
		return 0, fmt.Errorf("%w: %q has no components", ErrInvalidDuration, s)
	}
	return int64(total), nil
}

var frequencyRe = regexp.MustCompile(`^(\d+)\s*(s|m|min|h|d)$`)

// ParseFrequency parses a sampling interval string such as "1h", "10m", "30s"
// or "1d" into a time.Duration.
func ParseFrequency(s string) (time.Duration, error) {
	m := frequencyRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
	var unit time.Duration
	switch m[2] {
	case "s":
		unit = time.Second
	case "m", "min":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	}
	return time.Duration(n) * unit, nil
}
