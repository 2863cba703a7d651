// Package race holds the race clock and the objective list used by the race
// flow controller.
package race

import "time"

// Timer is the race clock. It only counts while running and the host feeds
// it frame deltas, so pausing the game pauses the race.
type Timer struct {
	// Limit is the time allowed for the race. Zero means no limit.
	Limit time.Duration

	elapsed time.Duration
	running bool
}

func NewTimer(limit time.Duration) *Timer {
	return &Timer{Limit: limit}
}

func (t *Timer) StartRace() {
	t.running = true
}

func (t *Timer) StopRace() {
	t.running = false
}

// IsFinite reports whether the race has a time limit.
func (t *Timer) IsFinite() bool {
	return t.Limit > 0
}

// IsOver reports whether a time limit exists and has been used up.
func (t *Timer) IsOver() bool {
	return t.IsFinite() && t.elapsed >= t.Limit
}

// Update adds dt to the race time while the race is running.
func (t *Timer) Update(dt time.Duration) {
	if !t.running || dt <= 0 {
		return
	}
	t.elapsed += dt
}

func (t *Timer) Running() bool          { return t.running }
func (t *Timer) Elapsed() time.Duration { return t.elapsed }

// Remaining is the time left before the limit, or zero for an unlimited
// race.
func (t *Timer) Remaining() time.Duration {
	if !t.IsFinite() || t.elapsed >= t.Limit {
		return 0
	}
	return t.Limit - t.elapsed
}

// Reset clears the elapsed time and stops the clock.
func (t *Timer) Reset() {
	t.elapsed = 0
	t.running = false
}
