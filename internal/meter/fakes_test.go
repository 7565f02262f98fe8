package meter_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"codeberg.org/mutker/rigsnr/internal/meter"
)

var errSlowRead = errors.New("no reply")

type reading struct {
	value int
	err   error
}

// scriptedSource replays readings in order, then keeps returning
// exhausted.
type scriptedSource struct {
	mu        sync.Mutex
	readings  []reading
	exhausted error
	calls     int
}

func (s *scriptedSource) Strength(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if len(s.readings) == 0 {
		return 0, s.exhausted
	}

	r := s.readings[0]
	s.readings = s.readings[1:]

	return r.value, r.err
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

type recordingRenderer struct {
	mu        sync.Mutex
	frames    []meter.Metrics
	newlines  int
	renderErr error
}

func (r *recordingRenderer) Render(m meter.Metrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frames = append(r.frames, m)

	return r.renderErr
}

func (r *recordingRenderer) Newline() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.newlines++

	return nil
}

func (r *recordingRenderer) Frames() []meter.Metrics {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]meter.Metrics(nil), r.frames...)
}

func (r *recordingRenderer) Newlines() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.newlines
}

type countingStopper struct {
	mu    sync.Mutex
	calls int
}

func (s *countingStopper) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++

	return s.calls == 1
}

// slowSource fails every read after delay and records when each read
// started and finished.
type slowSource struct {
	mu     sync.Mutex
	delay  time.Duration
	starts []time.Time
	ends   []time.Time
}

func (s *slowSource) Strength(_ context.Context) (int, error) {
	start := time.Now()
	time.Sleep(s.delay)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.starts = append(s.starts, start)
	s.ends = append(s.ends, time.Now())

	return 0, errSlowRead
}

func (s *slowSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.starts)
}

// Gaps returns the time between the end of each read and the start of
// the next one.
func (s *slowSource) Gaps() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	gaps := make([]time.Duration, 0, len(s.starts))
	for i := 1; i < len(s.starts); i++ {
		gaps = append(gaps, s.starts[i].Sub(s.ends[i-1]))
	}

	return gaps
}
