package aggregate

import (
	"context"
	"sync"
)

// State is the lifecycle position of a verdict or handle.
type State int

const (
	// StatePending means more responses or the deadline are still awaited.
	StatePending State = iota
	// StateSucceeded means the quorum threshold was met.
	StateSucceeded
	// StateFailed means success became unreachable or the deadline passed.
	StateFailed
)

// Verdict is the classifier's decision over the responses seen so far.
type Verdict struct {
	State State
	Value interface{}
	Err   error
}

// Pending returns the non-terminal verdict.
func Pending() Verdict {
	return Verdict{State: StatePending}
}

// Succeeded returns a terminal success verdict carrying the combined value.
func Succeeded(value interface{}) Verdict {
	return Verdict{State: StateSucceeded, Value: value}
}

// Failed returns a terminal failure verdict.
func Failed(err error) Verdict {
	return Verdict{State: StateFailed, Err: err}
}

// Terminal reports whether the verdict ends the operation.
func (v Verdict) Terminal() bool {
	return v.State != StatePending
}

// Handle is the single-assignment result container returned to callers.
// Exactly one of Resolve or Reject ever takes effect; later calls are
// no-ops. Once Done is closed the value and error are immutable and safe to
// read from any goroutine.
type Handle struct {
	once  sync.Once
	done  chan struct{}
	value interface{}
	err   error
}

// NewHandle returns an unresolved handle.
func NewHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Resolve fulfils the handle with a value.
func (h *Handle) Resolve(value interface{}) {
	h.once.Do(func() {
		h.value = value
		close(h.done)
	})
}

// Reject fails the handle with an error.
func (h *Handle) Reject(err error) {
	h.once.Do(func() {
		h.err = err
		close(h.done)
	})
}

// Complete settles the handle from a terminal verdict. Non-terminal
// verdicts are ignored.
func (h *Handle) Complete(v Verdict) {
	switch v.State {
	case StateSucceeded:
		h.Resolve(v.Value)
	case StateFailed:
		h.Reject(v.Err)
	}
}

// Done is closed once the handle is settled.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Settled reports whether the handle has been resolved or rejected.
func (h *Handle) Settled() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Value returns the resolution value. Valid only after Done is closed.
func (h *Handle) Value() interface{} {
	return h.value
}

// Err returns the rejection error, or nil. Valid only after Done is closed.
func (h *Handle) Err() error {
	return h.err
}

// Await blocks until the handle settles or the context ends, whichever
// comes first.
func (h *Handle) Await(ctx context.Context) (interface{}, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
