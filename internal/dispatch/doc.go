// Package dispatch translates typed requests into envelopes and hands them
// to the routing substrate. It is stateless: one call, one logical group
// broadcast, no knowledge of responses.
package dispatch
