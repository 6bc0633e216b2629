// Package fake provides a deterministic Estimator for tests and demos.
package fake

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	"go.viam.com/posematch/pose"
)

// Estimator returns canned poses instead of running a model. If Script is
// set, successive calls walk through it (sticking on the last entry);
// otherwise every call returns Poses. It also instruments call overlap so
// tests can assert the caller never issues a second estimation before the
// first completes.
type Estimator struct {
	mu     sync.Mutex
	Poses  []pose.Pose
	Script [][]pose.Pose
	Err    error

	// EstimateFunc overrides the canned behavior entirely when set.
	EstimateFunc func(ctx context.Context, img image.Image) ([]pose.Pose, error)

	calls     int
	inFlight  int32
	reentered atomic.Bool
}

// EstimatePoses returns the scripted poses for this call.
func (e *Estimator) EstimatePoses(ctx context.Context, img image.Image) ([]pose.Pose, error) {
	if atomic.AddInt32(&e.inFlight, 1) > 1 {
		e.reentered.Store(true)
	}
	defer atomic.AddInt32(&e.inFlight, -1)

	if e.EstimateFunc != nil {
		e.mu.Lock()
		e.calls++
		e.mu.Unlock()
		return e.EstimateFunc(ctx, img)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	call := e.calls
	e.calls++
	if e.Err != nil {
		return nil, e.Err
	}
	if len(e.Script) > 0 {
		if call >= len(e.Script) {
			call = len(e.Script) - 1
		}
		return e.Script[call], nil
	}
	return e.Poses, nil
}

// Close does nothing.
func (e *Estimator) Close(ctx context.Context) error {
	return nil
}

// Calls reports how many times EstimatePoses has been invoked.
func (e *Estimator) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Reentered reports whether two estimation calls ever overlapped.
func (e *Estimator) Reentered() bool {
	return e.reentered.Load()
}
