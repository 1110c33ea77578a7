package session

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// TestElapsedFloorsAndClamps verifies whole-second flooring and that a start
// in the future reads as zero rather than negative.
func TestElapsedFloorsAndClamps(t *testing.T) {
	if got := Elapsed(t0, t0.Add(90*time.Second+900*time.Millisecond)); got != 90 {
		t.Errorf("elapsed = %d, want 90", got)
	}
	if got := Elapsed(t0, t0); got != 0 {
		t.Errorf("elapsed at start = %d, want 0", got)
	}
	if got := Elapsed(t0.Add(time.Minute), t0); got != 0 {
		t.Errorf("elapsed with future start = %d, want 0", got)
	}
}

// TestElapsedIgnoresGaps verifies the drift-free property: elapsed depends
// only on the timestamps, not on how it was sampled in between.
func TestElapsedIgnoresGaps(t *testing.T) {
	// Sample at wildly uneven intervals; each read must match wall clock.
	for _, secs := range []int{1, 2, 600, 601, 3600, 7200} {
		now := t0.Add(time.Duration(secs) * time.Second)
		if got := Elapsed(t0, now); got != secs {
			t.Errorf("elapsed after %ds = %d, want %d", secs, got, secs)
		}
	}
}

// TestRemainingClampsAtZero verifies countdown decay and the zero clamp.
func TestRemainingClampsAtZero(t *testing.T) {
	if got := Remaining(90, t0, t0); got != 90 {
		t.Errorf("remaining at start = %d, want 90", got)
	}
	if got := Remaining(90, t0, t0.Add(30*time.Second)); got != 60 {
		t.Errorf("remaining after 30s = %d, want 60", got)
	}
	if got := Remaining(90, t0, t0.Add(2*time.Hour)); got != 0 {
		t.Errorf("remaining long past deadline = %d, want 0", got)
	}
}

// TestExtendStartAddsExactly verifies that shifting the base grows the
// derived remaining time by exactly n with no change to the decay rate.
func TestExtendStartAddsExactly(t *testing.T) {
	now := t0.Add(40 * time.Second)
	before := Remaining(90, t0, now)

	shifted := ExtendStart(t0, 30)
	after := Remaining(90, shifted, now)
	if after != before+30 {
		t.Errorf("remaining after extend = %d, want %d", after, before+30)
	}

	// One second later the extended countdown has decayed by exactly one.
	if got := Remaining(90, shifted, now.Add(time.Second)); got != after-1 {
		t.Errorf("remaining one tick later = %d, want %d", got, after-1)
	}
}
