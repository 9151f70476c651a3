package timeutil

import (
	"errors"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"PT1H", 3600},
		{"PT2H", 7200},
		{"PT30M", 1800},
		{"PT15S", 15},
		{"P1D", 86400},
		{"P1DT12H", 86400 + 12*3600},
		{"P1W", 7 * 86400},
		{"P1M", 30 * 86400},
		{"P1Y", 365 * 86400},
		{"P1YT1S", 365*86400 + 1},
		{"PT0.5H", 1800},
	}
	for _, c := range cases {
		got, err := ParseDuration(c.in)
		if err != nil {
			t.Fatalf("ParseDuration(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseDuration(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, in := range []string{"", "P", "PT", "1h", "PT1X", "garbage", "P-1D"} {
		if _, err := ParseDuration(in); !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("ParseDuration(%q): expected ErrInvalidDuration, got %v", in, err)
		}
	}
}

func TestParseFrequency(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"1h", time.Hour},
		{"10m", 10 * time.Minute},
		{"5min", 5 * time.Minute},
		{"30s", 30 * time.Second},
		{"1d", 24 * time.Hour},
	}
	for _, c := range cases {
		got, err := ParseFrequency(c.in)
		if err != nil {
			t.Fatalf("ParseFrequency(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseFrequency(%q) = %v, want %v", c.in, got, c.want)
		}
	}
	for _, in := range []string{"", "h", "0m", "-1h", "1y"} {
		if _, err := ParseFrequency(in); !errors.Is(err, ErrInvalidFrequency) {
			t.Fatalf("ParseFrequency(%q): expected ErrInvalidFrequency, got %v", in, err)
		}
	}
}
