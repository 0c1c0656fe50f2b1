package grove

import "time"

// FrameClock counts visual and physics frames. The App updates it before any
// system of the frame runs.
type FrameClock struct {
	Frames  uint64
	Delta   time.Duration
	Elapsed time.Duration

	PhysicsFrames  uint64
	PhysicsDelta   time.Duration
	PhysicsElapsed time.Duration

	// FixedTicks counts FixedUpdate runs; FixedStep is their period.
	FixedTicks uint64
	FixedStep  time.Duration
}

// DeltaSeconds returns the last visual delta in seconds.
func (c FrameClock) DeltaSeconds() float64 { return c.Delta.Seconds() }

// PhysicsDeltaSeconds returns the last physics delta in seconds.
func (c FrameClock) PhysicsDeltaSeconds() float64 { return c.PhysicsDelta.Seconds() }

// FixedDeltaSeconds returns the fixed step in seconds.
func (c FrameClock) FixedDeltaSeconds() float64 { return c.FixedStep.Seconds() }

func (c *FrameClock) tick(delta time.Duration) {
	c.Frames++
	c.Delta = delta
	c.Elapsed += delta
}

func (c *FrameClock) tickPhysics(delta time.Duration) {
	c.PhysicsFrames++
	c.PhysicsDelta = delta
	c.PhysicsElapsed += delta
}

// seconds converts an engine delta to a Duration. Negative values become zero.
func seconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
