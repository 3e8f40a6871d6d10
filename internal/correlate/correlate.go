package correlate

import "sync/atomic"

// ID correlates one outgoing request with its responses. IDs are unique
// process-wide for the lifetime of the allocator, which is stronger than the
// per-response-kind uniqueness the pending table actually needs.
type ID int64

// Allocator hands out IDs. The zero value is ready to use and safe for
// concurrent callers.
type Allocator struct {
	next atomic.Int64
}

// NewAllocator returns a fresh allocator starting above zero, so a zero ID
// can mark fire-and-forget envelopes that expect no response.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// NextID returns an ID never handed out by this allocator before.
func (a *Allocator) NextID() ID {
	return ID(a.next.Add(1))
}
