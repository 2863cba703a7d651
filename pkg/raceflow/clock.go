package raceflow

import "time"

// Clock reports the two time bases the race flow needs. Now is game time
// (scaled, frozen while paused); RealNow is unscaled and keeps running.
type Clock interface {
	Now() time.Duration
	RealNow() time.Duration
}

// FrameClock is a Clock advanced by the host once per frame.
type FrameClock struct {
	TimeScale float64 // 1.0 = real time, 0 = frozen
	Paused    bool

	now     time.Duration
	realNow time.Duration
}

func NewFrameClock() *FrameClock {
	return &FrameClock{TimeScale: 1.0}
}

// Advance moves both time bases forward by one frame of real duration dt.
func (c *FrameClock) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	c.realNow += dt
	if c.Paused {
		return
	}
	c.now += time.Duration(float64(dt) * c.TimeScale)
}

func (c *FrameClock) Now() time.Duration     { return c.now }
func (c *FrameClock) RealNow() time.Duration { return c.realNow }
