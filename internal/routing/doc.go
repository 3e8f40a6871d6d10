// Package routing defines the client's view of the routing substrate: a
// best-effort group send plus an inbound delivery callback. It also ships a
// deterministic closest-group ring and an in-process loopback substrate used
// by tests and the demo; the real overlay lives outside this module.
package routing
