package rig

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const (
	dummyFloor = -54
	dummyPeak  = 60
	dummyStart = -30
	dummyStep  = 3
)

// dummy simulates an S-meter drifting around the noise floor.
type dummy struct {
	mu    sync.Mutex
	rng   *rand.Rand
	level int
}

func newDummy(seed int64) *dummy {
	return &dummy{
		rng:   rand.New(rand.NewSource(seed)),
		level: dummyStart,
	}
}

func (*dummy) open(_ string, _ int) error {
	return nil
}

func (d *dummy) strength(_ context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.level += d.rng.Intn(2*dummyStep+1) - dummyStep
	d.level = min(max(d.level, dummyFloor), dummyPeak)

	return d.level, nil
}

func (*dummy) close() error {
	return nil
}

func dummySeed() int64 {
	return time.Now().UnixNano()
}
