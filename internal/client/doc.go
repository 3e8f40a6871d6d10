// Package client is the public operation surface of the node client. Each
// operation allocates a correlation id, registers a pending entry with its
// quorum classifier, dispatches the request, and returns a result handle
// the caller observes asynchronously. The package also hosts the inbound
// demultiplexer that routes substrate messages into the pending table.
package client
