// Package meter tracks the running extremes of S-meter samples and runs
// the polling and keyboard activities that feed and reset them.
package meter

import (
	"math"
	"sync"
)

const (
	DefaultCeiling = 200.0
	DefaultOffset  = 55

	// floor is the smallest normalized value. It keeps the SNR ratio's
	// denominator positive whatever the offset.
	floor = 1.0
)

// Metrics are the values shown on the readout.
type Metrics struct {
	SNR float64
	DNR float64
}

// Extremes is a consistent view of the tracker state.
type Extremes struct {
	High float64
	Low  float64
	Metrics
}

// Tracker holds the running high and low of normalized samples together
// with the metrics derived from them. All four values change as one unit.
type Tracker struct {
	mu      sync.Mutex
	ceiling float64
	offset  int
	state   Extremes
}

func NewTracker(ceiling float64, offset int) *Tracker {
	t := &Tracker{
		ceiling: math.Max(ceiling, floor),
		offset:  offset,
	}
	t.state = t.initial()

	return t
}

func (t *Tracker) initial() Extremes {
	return Extremes{High: floor, Low: t.ceiling}
}

// Normalize shifts a raw reading so the device's reference floor maps to
// 1, never going below 1.
func (t *Tracker) Normalize(raw int) float64 {
	return math.Max(float64(raw+t.offset), floor)
}

// Observe folds one raw sample into the extremes and returns the
// recomputed metrics.
func (t *Tracker) Observe(raw int) Metrics {
	value := t.Normalize(raw)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.High = math.Max(t.state.High, value)
	t.state.Low = math.Min(t.state.Low, value)
	t.state.Metrics = derive(t.state.High, t.state.Low)

	return t.state.Metrics
}

// Reset starts a new measurement window.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = t.initial()
}

// Snapshot returns the latest metrics. They are zero until the first
// observation after construction or a reset.
func (t *Tracker) Snapshot() Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state.Metrics
}

// State returns the extremes and metrics as one consistent value.
func (t *Tracker) State() Extremes {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state
}

// derive computes SNR as 10*ln(high/low), natural log, and DNR as the
// plain difference.
func derive(high, low float64) Metrics {
	return Metrics{
		SNR: 10 * math.Log(math.Abs(high/low)),
		DNR: high - low,
	}
}
