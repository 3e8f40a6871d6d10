package routing

import "errors"

// ErrTransportUnavailable means the substrate refused the send outright.
// It surfaces synchronously to the caller; the core never retries.
var ErrTransportUnavailable = errors.New("transport unavailable")

// Target names the point in the address space whose closest peer group
// should service a request. The substrate owns the fan-out; one Send is one
// logical broadcast to that group.
type Target string

// Sender is the outbound half of the substrate. Send is best-effort: no
// delivery guarantee, no response coupling, and it must not block on peer
// behaviour.
type Sender interface {
	Send(target Target, data []byte) error
}

// Handler receives every inbound message the substrate delivers to this
// node. Delivery may duplicate, reorder, or drop messages.
type Handler func(data []byte)
