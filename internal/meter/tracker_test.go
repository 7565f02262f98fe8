package meter_test

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"codeberg.org/mutker/rigsnr/internal/meter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-9

func TestTrackerInitialState(t *testing.T) {
	tr := meter.NewTracker(meter.DefaultCeiling, meter.DefaultOffset)

	state := tr.State()
	assert.InDelta(t, 1.0, state.High, delta)
	assert.InDelta(t, 200.0, state.Low, delta)
	assert.Equal(t, meter.Metrics{}, tr.Snapshot())
}

func TestTrackerObserveAndReset(t *testing.T) {
	tr := meter.NewTracker(200, 55)

	// A: -45 normalizes to 10.
	m := tr.Observe(-45)
	state := tr.State()
	assert.InDelta(t, 10.0, state.High, delta)
	assert.InDelta(t, 10.0, state.Low, delta)
	assert.InDelta(t, 0.0, m.SNR, delta)
	assert.InDelta(t, 0.0, m.DNR, delta)

	// B: -10 normalizes to 45.
	m = tr.Observe(-10)
	state = tr.State()
	assert.InDelta(t, 45.0, state.High, delta)
	assert.InDelta(t, 10.0, state.Low, delta)
	assert.InDelta(t, 35.0, m.DNR, delta)
	assert.InDelta(t, 10*math.Log(4.5), m.SNR, delta)
	assert.InDelta(t, 15.04, m.SNR, 0.01)
	assert.Equal(t, m, tr.Snapshot())

	// C: reset starts a fresh window.
	tr.Reset()
	state = tr.State()
	assert.InDelta(t, 1.0, state.High, delta)
	assert.InDelta(t, 200.0, state.Low, delta)

	m = tr.Observe(-25)
	state = tr.State()
	assert.InDelta(t, 30.0, state.High, delta)
	assert.InDelta(t, 30.0, state.Low, delta)
	assert.Equal(t, meter.Metrics{SNR: 0, DNR: 0}, m)
}

func TestTrackerResetIdempotent(t *testing.T) {
	tr := meter.NewTracker(200, 55)
	tr.Observe(-20)
	tr.Observe(5)

	tr.Reset()
	once := tr.State()
	tr.Reset()
	twice := tr.State()

	assert.Equal(t, once, twice)
	assert.InDelta(t, 1.0, twice.High, delta)
	assert.InDelta(t, 200.0, twice.Low, delta)
}

func TestTrackerMonotonicExtremes(t *testing.T) {
	tr := meter.NewTracker(200, 55)
	rng := rand.New(rand.NewSource(7))

	prev := tr.State()
	for i := 0; i < 1000; i++ {
		m := tr.Observe(rng.Intn(120) - 60)
		state := tr.State()

		require.GreaterOrEqual(t, state.High, prev.High)
		require.LessOrEqual(t, state.Low, prev.Low)
		require.GreaterOrEqual(t, state.High, state.Low)
		require.GreaterOrEqual(t, state.Low, 1.0)
		require.GreaterOrEqual(t, m.SNR, 0.0)
		require.GreaterOrEqual(t, m.DNR, 0.0)

		prev = state
	}
}

func TestTrackerNormalizeFloor(t *testing.T) {
	tr := meter.NewTracker(200, 55)
	assert.InDelta(t, 1.0, tr.Normalize(-54), delta)
	assert.InDelta(t, 1.0, tr.Normalize(-90), delta, "readings below the reference floor clamp to 1")

	shifted := meter.NewTracker(200, 10)
	m := shifted.Observe(-80)
	assert.InDelta(t, 1.0, shifted.State().Low, delta)
	assert.False(t, math.IsInf(m.SNR, 0))
	assert.False(t, math.IsNaN(m.SNR))
}

func TestTrackerSampleAboveCeiling(t *testing.T) {
	tr := meter.NewTracker(100, 55)

	m := tr.Observe(60)
	state := tr.State()
	assert.InDelta(t, 115.0, state.High, delta)
	assert.InDelta(t, 100.0, state.Low, delta)
	assert.InDelta(t, 15.0, m.DNR, delta)
}

func TestTrackerCeilingBelowFloor(t *testing.T) {
	tr := meter.NewTracker(0, 55)
	assert.InDelta(t, 1.0, tr.State().Low, delta)
}

func TestTrackerNoTearing(t *testing.T) {
	tr := meter.NewTracker(200, 55)

	const iterations = 5000
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < iterations; i++ {
			m := tr.Observe(rng.Intn(150) - 70)
			if m.SNR < 0 || m.DNR < 0 {
				t.Errorf("torn observation: %+v", m)
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			tr.Reset()
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			s := tr.State()
			fresh := s.High == 1 && s.Low == 200 && s.Metrics == (meter.Metrics{})
			if fresh {
				continue
			}
			if s.High < s.Low {
				t.Errorf("high below low: %+v", s)
				return
			}
			if math.Abs(s.DNR-(s.High-s.Low)) > delta {
				t.Errorf("metrics do not match extremes: %+v", s)
				return
			}
		}
	}()

	wg.Wait()
}
