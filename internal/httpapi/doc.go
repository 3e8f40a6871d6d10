// Package httpapi exposes the node client over a small JSON HTTP surface
// for demos and debugging. Handlers await result handles with the request
// context, so HTTP timeouts bound the wait.
package httpapi
