package pending

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"maidclient/internal/aggregate"
	"maidclient/internal/correlate"
)

var (
	// ErrDuplicateOperation means a correlation id was registered twice
	// while the first registration was still live.
	ErrDuplicateOperation = errors.New("operation id already registered")
	// ErrTimeout means the deadline passed before the quorum resolved.
	ErrTimeout = errors.New("operation timed out")
)

// DefaultSweepInterval is how often Run checks for expired entries.
const DefaultSweepInterval = 100 * time.Millisecond

// Classifier renders a verdict over the payloads accumulated so far.
type Classifier func(payloads [][]byte) aggregate.Verdict

// entry is one in-flight operation. The table map is guarded by Table.mu;
// everything inside an entry is guarded by the entry's own mutex, so
// deliveries for different ids never contend.
type entry struct {
	mu       sync.Mutex
	done     bool
	expected int
	deadline time.Time
	payloads [][]byte
	classify Classifier
	handle   *aggregate.Handle
}

// Table is the concurrent pending-operation registry. Register, Deliver and
// ExpireDue may race freely; each entry settles its handle exactly once and
// leaves the table in the same step.
type Table struct {
	mu      sync.RWMutex
	entries map[correlate.ID]*entry
	log     *logrus.Entry
}

// NewTable returns an empty table.
func NewTable(log *logrus.Entry) *Table {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Table{
		entries: make(map[correlate.ID]*entry),
		log:     log,
	}
}

// Register inserts a pending entry for id. expected bounds the accumulator;
// classify runs synchronously on every delivery; handle settles when the
// verdict turns terminal or the deadline passes.
func (t *Table) Register(id correlate.ID, expected int, deadline time.Time,
	classify Classifier, handle *aggregate.Handle) error {
	if expected < 1 {
		return fmt.Errorf("pending: expected count must be >= 1, got %d", expected)
	}
	if classify == nil || handle == nil {
		return fmt.Errorf("pending: classifier and handle are required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.entries[id]; exists {
		return fmt.Errorf("pending: id %d: %w", id, ErrDuplicateOperation)
	}
	t.entries[id] = &entry{
		expected: expected,
		deadline: deadline,
		classify: classify,
		handle:   handle,
	}
	return nil
}

// Deliver appends a response payload to the entry for id and classifies the
// accumulated set. Unknown ids are dropped silently: stragglers arriving
// after resolution or expiry are normal network behaviour, not errors.
// Deliver never blocks on peer behaviour and is safe on hot delivery paths.
func (t *Table) Deliver(id correlate.ID, payload []byte) {
	t.mu.RLock()
	e, ok := t.entries[id]
	t.mu.RUnlock()
	if !ok {
		t.log.WithField("id", id).Debug("dropping response for unknown operation")
		return
	}

	e.mu.Lock()
	if e.done {
		e.mu.Unlock()
		return
	}
	if len(e.payloads) >= e.expected {
		// Accumulator is bounded by the expected count; anything beyond it
		// is a duplicate or a straggler.
		e.mu.Unlock()
		t.log.WithField("id", id).Debug("dropping response beyond expected count")
		return
	}
	e.payloads = append(e.payloads, payload)
	verdict := e.classify(e.payloads)
	if verdict.Terminal() {
		e.done = true
	}
	e.mu.Unlock()

	if verdict.Terminal() {
		// Remove before settling so a caller woken by Await never observes
		// the entry still in the table.
		t.remove(id)
		e.handle.Complete(verdict)
		t.log.WithFields(logrus.Fields{"id": id, "state": verdict.State}).
			Debug("operation resolved")
	}
}

// ExpireDue classifies every entry whose deadline has passed one final time,
// rejects the still-pending ones with ErrTimeout, removes them all, and
// returns the ids it expired.
func (t *Table) ExpireDue(now time.Time) []correlate.ID {
	t.mu.RLock()
	due := make(map[correlate.ID]*entry)
	for id, e := range t.entries {
		if !e.deadline.After(now) {
			due[id] = e
		}
	}
	t.mu.RUnlock()

	expired := make([]correlate.ID, 0, len(due))
	for id, e := range due {
		e.mu.Lock()
		if e.done {
			e.mu.Unlock()
			continue
		}
		verdict := e.classify(e.payloads)
		e.done = true
		e.mu.Unlock()

		t.remove(id)
		if verdict.Terminal() {
			e.handle.Complete(verdict)
		} else {
			e.handle.Reject(fmt.Errorf("pending: id %d: %w", id, ErrTimeout))
		}
		expired = append(expired, id)
		t.log.WithField("id", id).Debug("operation expired")
	}
	return expired
}

// Drop removes an entry without settling its handle. Used when dispatch
// fails after registration and the error returns to the caller directly.
func (t *Table) Drop(id correlate.ID) {
	t.mu.RLock()
	e, ok := t.entries[id]
	t.mu.RUnlock()
	if !ok {
		return
	}
	e.mu.Lock()
	e.done = true
	e.mu.Unlock()
	t.remove(id)
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Run sweeps for expired entries every interval until the context ends.
func (t *Table) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.ExpireDue(now)
		}
	}
}

func (t *Table) remove(id correlate.ID) {
	t.mu.Lock()
	delete(t.entries, id)
	t.mu.Unlock()
}
