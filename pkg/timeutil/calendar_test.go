package timeutil

import (
	"testing"
	"time"
)

func ms(y int, m time.Month, d, hh int) int64 {
	return time.Date(y, m, d, hh, 0, 0, 0, time.UTC).UnixMilli()
}

func TestMonthsBetween(t *testing.T) {
	cases := []struct {
		from, to int64
		want     int
	}{
		{ms(2024, time.January, 15, 0), ms(2024, time.April, 20, 0), 3},
		{ms(2024, time.January, 31, 0), ms(2024, time.February, 1, 0), 1},
		{ms(2024, time.March, 1, 0), ms(2024, time.March, 31, 23), 0},
		{ms(2024, time.December, 10, 0), ms(2025, time.January, 5, 0), 1},
		{ms(2024, time.April, 1, 0), ms(2024, time.January, 1, 0), -3},
	}
	for _, c := range cases {
		if got := MonthsBetween(c.from, c.to); got != c.want {
			t.Fatalf("MonthsBetween(%d, %d) = %d, want %d", c.from, c.to, got, c.want)
		}
	}
	same := ms(2024, time.June, 6, 6)
	if got := MonthsBetween(same, same); got != 0 {
		t.Fatalf("MonthsBetween(equal) = %d, want 0", got)
	}
}

func TestAddMonths(t *testing.T) {
	got := AddMonths(ms(2024, time.January, 15, 0), 1)
	if got != ms(2024, time.February, 15, 0) {
		t.Fatalf("AddMonths(+1) = %d", got)
	}
	got = AddMonths(ms(2024, time.March, 15, 0), -2)
	if got != ms(2024, time.January, 15, 0) {
		t.Fatalf("AddMonths(-2) = %d", got)
	}
	// Go's AddDate normalizes Jan 31 + 1 month into March.
	got = AddMonths(ms(2023, time.January, 31, 0), 1)
	if got != ms(2023, time.March, 3, 0) {
		t.Fatalf("AddMonths(Jan 31 + 1) = %d", got)
	}
}

func TestFutureTimestamps(t *testing.T) {
	now := time.Date(2024, time.May, 1, 10, 25, 13, 0, time.UTC)
	got := FutureTimestamps(now, 3, time.Hour)
	want := []int64{
		ms(2024, time.May, 1, 11),
		ms(2024, time.May, 1, 12),
		ms(2024, time.May, 1, 13),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d timestamps, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("timestamp %d = %d, want %d", i, got[i], want[i])
		}
	}
	if out := FutureTimestamps(now, 0, time.Hour); out != nil {
		t.Fatalf("expected nil for zero count")
	}
}
