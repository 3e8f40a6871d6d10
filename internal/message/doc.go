// Package message defines the wire envelope, the request/response payload
// shapes for each operation, and the return codes peers embed in responses.
package message
