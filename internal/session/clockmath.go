package session

import "time"

// Elapsed returns whole seconds between start and now, floored, never
// negative. Because it reads only the stored timestamp and the current
// instant, it is correct no matter how many ticks were missed or how long
// the process was suspended.
func Elapsed(start, now time.Time) int {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// Remaining returns whole seconds left on a countdown of totalSeconds that
// began at start, clamped at zero.
func Remaining(totalSeconds int, start, now time.Time) int {
	left := totalSeconds - Elapsed(start, now)
	if left < 0 {
		return 0
	}
	return left
}

// ExtendStart shifts a countdown's base timestamp by n seconds so that the
// derived remaining time grows by exactly n. The countdown keeps decaying
// against the shifted timestamp, so there is no discontinuity and no counter
// to drift.
func ExtendStart(start time.Time, n int) time.Time {
	return start.Add(time.Duration(n) * time.Second)
}
