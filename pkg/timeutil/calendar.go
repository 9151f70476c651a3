package timeutil

import "time"

// MonthsBetween returns the calendar-month difference between two millisecond
// timestamps by year*12+month arithmetic, ignoring day-of-month. Negative when
// to < from, zero for equal timestamps.
func MonthsBetween(fromMs, toMs int64) int {
	from := time.UnixMilli(fromMs).UTC()
	to := time.UnixMilli(toMs).UTC()
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// AddMonths shifts a millisecond timestamp by n calendar months, following
// Go's AddDate normalization for out-of-range days.
func AddMonths(tsMs int64, n int) int64 {
	return time.UnixMilli(tsMs).UTC().AddDate(0, n, 0).UnixMilli()
}

// FutureTimestamps projects the next count timestamps after now on the freq
// grid. The first timestamp is the first grid point strictly after now.
func FutureTimestamps(now time.Time, count int, freq time.Duration) []int64 {
	if count <= 0 || freq <= 0 {
		return nil
	}
	out := make([]int64, 0, count)
	t := now.UTC().Truncate(freq).Add(freq)
	for i := 0; i < count; i++ {
		out = append(out, t.UnixMilli())
		t = t.Add(freq)
	}
	return out
}
