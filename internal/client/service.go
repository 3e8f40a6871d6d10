package client

import (
	"maidclient/internal/correlate"
	"maidclient/internal/message"
)

// HandleMessage is the inbound demultiplexer: every message the substrate
// delivers to this node enters here. Response kinds are routed to the
// pending table by correlation id; anything else is logged and dropped.
// There is no business logic on this path and it never blocks.
func (c *Client) HandleMessage(data []byte) {
	env, err := message.DecodeEnvelope(data)
	if err != nil {
		c.log.WithError(err).Warn("dropping malformed inbound message")
		return
	}
	if !env.Kind.IsResponse() {
		c.log.WithField("kind", env.Kind).Warn("dropping unexpected inbound kind")
		return
	}
	if env.ID == 0 {
		c.log.WithField("kind", env.Kind).Debug("dropping response without correlation id")
		return
	}
	c.table.Deliver(correlate.ID(env.ID), env.Payload)
}

// Handler adapts the client for substrate wiring.
func (c *Client) Handler() func(data []byte) {
	return c.HandleMessage
}
