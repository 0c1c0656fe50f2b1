package schedule

import "time"

const (
	// DefaultFixedStep is the fixed-update period, 64 Hz.
	DefaultFixedStep = time.Second / 64
	// DefaultMaxDelta caps how much real time one visual frame may feed the
	// accumulator, so a long stall does not trigger a burst of fixed updates.
	DefaultMaxDelta = 250 * time.Millisecond
)

// FixedTime is the fixed-timestep accumulator. Each visual frame adds its real
// elapsed time; FixedUpdate then runs once per whole Step accumulated.
type FixedTime struct {
	Step     time.Duration
	MaxDelta time.Duration

	overstep time.Duration
	elapsed  time.Duration
	ticks    uint64
}

// NewFixedTime returns an accumulator with the given step and the default
// delta cap.
func NewFixedTime(step time.Duration) FixedTime {
	return FixedTime{Step: step, MaxDelta: DefaultMaxDelta}
}

// Accumulate adds one frame's real elapsed time, clamped to MaxDelta.
// Negative deltas are ignored.
func (f *FixedTime) Accumulate(delta time.Duration) {
	if delta <= 0 {
		return
	}
	if f.MaxDelta > 0 && delta > f.MaxDelta {
		delta = f.MaxDelta
	}
	f.overstep += delta
}

// Expend consumes one Step if enough time has accumulated.
func (f *FixedTime) Expend() bool {
	if f.Step <= 0 || f.overstep < f.Step {
		return false
	}
	f.overstep -= f.Step
	f.elapsed += f.Step
	f.ticks++
	return true
}

// Ticks returns how many fixed steps have run.
func (f *FixedTime) Ticks() uint64 { return f.ticks }

// Elapsed returns the total fixed time simulated.
func (f *FixedTime) Elapsed() time.Duration { return f.elapsed }

// Overstep returns accumulated time not yet consumed by a step.
func (f *FixedTime) Overstep() time.Duration { return f.overstep }

// OverstepFraction returns Overstep as a fraction of Step, for interpolation.
func (f *FixedTime) OverstepFraction() float64 {
	if f.Step <= 0 {
		return 0
	}
	return float64(f.overstep) / float64(f.Step)
}
