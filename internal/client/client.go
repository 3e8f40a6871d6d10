package client

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"maidclient/internal/aggregate"
	"maidclient/internal/config"
	"maidclient/internal/correlate"
	"maidclient/internal/dispatch"
	"maidclient/internal/identity"
	"maidclient/internal/message"
	"maidclient/internal/pending"
	"maidclient/internal/routing"
)

// Client is the node client facade.
type Client struct {
	cfg        *config.Config
	alloc      *correlate.Allocator
	table      *pending.Table
	dispatcher *dispatch.Dispatcher
	log        *logrus.Entry

	cancelSweep context.CancelFunc
}

// New wires a client over the given substrate and starts the expiry sweep.
// Close stops the sweep.
func New(cfg *config.Config, sender routing.Sender, log *logrus.Entry) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	c := &Client{
		cfg:        cfg,
		alloc:      correlate.NewAllocator(),
		table:      pending.NewTable(log.WithField("component", "pending")),
		dispatcher: dispatch.New(sender, log.WithField("component", "dispatch")),
		log:        log,
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelSweep = cancel
	go c.table.Run(ctx, cfg.SweepInterval)
	return c, nil
}

// Close stops the expiry sweep. In-flight handles settle only through
// deliveries that already reached the table.
func (c *Client) Close() {
	c.cancelSweep()
}

// PendingOperations returns the number of in-flight operations.
func (c *Client) PendingOperations() int {
	return c.table.Len()
}

// CreateAccount establishes a storage account for the identity pair. The
// returned handle resolves once the account group reaches quorum, or fails
// with the most informative peer error; "account already exists" is a
// recognized outcome callers commonly treat as success.
func (c *Client) CreateAccount(maid identity.PublicMaid, anmaid identity.PublicAnmaid,
	timeout time.Duration) (*aggregate.Handle, error) {
	pol := c.cfg.Operations.CreateAccount
	req := message.CreateAccountRequest{PublicMaid: maid, PublicAnmaid: anmaid}
	return c.correlated("create_account", pol, timeout, decodeUnit, nil, func(id correlate.ID) error {
		return c.dispatcher.SendCreateAccountRequest(id, req)
	})
}

// RemoveAccount notifies the account group to drop the account. With the
// default fire-and-forget policy the returned handle is already resolved;
// when configured correlated it resolves from peer acknowledgements.
func (c *Client) RemoveAccount(maid identity.PublicMaid, timeout time.Duration) (*aggregate.Handle, error) {
	pol := c.cfg.Operations.RemoveAccount
	req := message.RemoveAccountRequest{PublicMaid: maid}
	if !pol.Correlated {
		return c.fireAndForget(func() error {
			return c.dispatcher.SendRemoveAccountRequest(0, req)
		})
	}
	return c.correlated("remove_account", pol, timeout, decodeUnit, nil, func(id correlate.ID) error {
		return c.dispatcher.SendRemoveAccountRequest(id, req)
	})
}

// RegisterPmid registers a storage provider under its owning account.
func (c *Client) RegisterPmid(reg identity.PmidRegistration, timeout time.Duration) (*aggregate.Handle, error) {
	pol := c.cfg.Operations.RegisterPmid
	req := message.RegisterPmidRequest{Registration: reg}
	return c.correlated("register_pmid", pol, timeout, decodeUnit, nil, func(id correlate.ID) error {
		return c.dispatcher.SendRegisterPmidRequest(id, req)
	})
}

// UnregisterPmid deregisters a storage provider. Fire-and-forget by
// default, correlated when configured so.
func (c *Client) UnregisterPmid(maid identity.MaidName, pmid identity.PmidName,
	timeout time.Duration) (*aggregate.Handle, error) {
	pol := c.cfg.Operations.UnregisterPmid
	req := message.UnregisterPmidRequest{PmidName: pmid}
	if !pol.Correlated {
		return c.fireAndForget(func() error {
			return c.dispatcher.SendUnregisterPmidRequest(0, maid, req)
		})
	}
	return c.correlated("unregister_pmid", pol, timeout, decodeUnit, nil, func(id correlate.ID) error {
		return c.dispatcher.SendUnregisterPmidRequest(id, maid, req)
	})
}

// GetPmidHealth queries the provider's group for its health figure. The
// handle resolves with the minimum available size reported across the
// quorum (a uint64).
func (c *Client) GetPmidHealth(pmid identity.PmidName, timeout time.Duration) (*aggregate.Handle, error) {
	pol := c.cfg.Operations.PmidHealth
	req := message.PmidHealthRequest{PmidName: pmid}
	return c.correlated("pmid_health", pol, timeout, decodeHealth, aggregate.MinUint64, func(id correlate.ID) error {
		return c.dispatcher.SendPmidHealthRequest(id, req)
	})
}

// correlated runs the shared operation template: allocate id, build the
// aggregator, register the pending entry, dispatch, return the handle.
// A dispatch failure drops the fresh entry and surfaces synchronously.
func (c *Client) correlated(op string, pol config.QuorumPolicy, timeout time.Duration,
	decode aggregate.DecodeFunc, combine aggregate.CombineFunc,
	send func(correlate.ID) error) (*aggregate.Handle, error) {
	if timeout <= 0 {
		timeout = pol.Timeout
	}

	agg, err := aggregate.New(aggregate.Options{
		Threshold: pol.Threshold,
		Expected:  pol.Expected,
		Decode:    decode,
		Combine:   combine,
		Log:       c.log.WithField("op", op),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id := c.alloc.NextID()
	handle := aggregate.NewHandle()
	deadline := time.Now().Add(timeout)
	if err := c.table.Register(id, pol.Expected, deadline, agg.Classify, handle); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := send(id); err != nil {
		c.table.Drop(id)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.log.WithFields(logrus.Fields{"op": op, "id": id, "deadline": deadline}).
		Debug("operation registered")
	return handle, nil
}

// fireAndForget dispatches once and returns an already-resolved handle so
// the call shape matches the correlated path.
func (c *Client) fireAndForget(send func() error) (*aggregate.Handle, error) {
	if err := send(); err != nil {
		return nil, err
	}
	handle := aggregate.NewHandle()
	handle.Resolve(nil)
	return handle, nil
}

func decodeUnit(data []byte) (aggregate.Response, error) {
	rc, err := message.DecodeUnitResponse(data)
	if err != nil {
		return aggregate.Response{}, err
	}
	return aggregate.Response{Result: rc}, nil
}

func decodeHealth(data []byte) (aggregate.Response, error) {
	rc, size, err := message.DecodePmidHealthResponse(data)
	if err != nil {
		return aggregate.Response{}, err
	}
	return aggregate.Response{Result: rc, Value: size}, nil
}
