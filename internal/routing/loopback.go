package routing

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// VaultFunc services one request on behalf of a fake peer. It returns the
// response frame to deliver back to the client, or ok=false to stay silent.
type VaultFunc func(nodeID string, data []byte) (resp []byte, ok bool)

// Loopback is an in-process substrate. A Send fans out to the group of
// registered vaults closest to the target; each vault's response is
// delivered back to the client handler on its own goroutine, so deliveries
// interleave the way real network threads would.
type Loopback struct {
	mu        sync.RWMutex
	ring      *Ring
	vaults    map[string]VaultFunc
	groupSize int
	client    Handler
	duplicate bool
	log       *logrus.Entry
}

// NewLoopback builds a loopback substrate delivering inbound messages to
// client.
func NewLoopback(groupSize int, client Handler, log *logrus.Entry) *Loopback {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Loopback{
		ring:      NewRing(),
		vaults:    make(map[string]VaultFunc),
		groupSize: groupSize,
		client:    client,
		log:       log,
	}
}

// AddVault registers a fake peer.
func (l *Loopback) AddVault(id string, fn VaultFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vaults[id] = fn
	l.ring.AddNode(id)
}

// SetDuplicateDelivery makes every response arrive twice, exercising the
// client's straggler handling.
func (l *Loopback) SetDuplicateDelivery(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.duplicate = on
}

// Send implements Sender. It refuses the send when no vaults exist, the
// substrate's equivalent of an unreachable network.
func (l *Loopback) Send(target Target, data []byte) error {
	l.mu.RLock()
	group := l.ring.GroupFor(string(target), l.groupSize)
	duplicate := l.duplicate
	fns := make(map[string]VaultFunc, len(group))
	for _, id := range group {
		fns[id] = l.vaults[id]
	}
	l.mu.RUnlock()

	if len(group) == 0 {
		return fmt.Errorf("loopback: no peers for target %q: %w", target, ErrTransportUnavailable)
	}

	for id, fn := range fns {
		go func(id string, fn VaultFunc) {
			resp, ok := fn(id, data)
			if !ok {
				return
			}
			l.client(resp)
			if duplicate {
				l.client(resp)
			}
		}(id, fn)
	}
	l.log.WithFields(logrus.Fields{"target": target, "group": len(group)}).
		Trace("loopback fan-out")
	return nil
}
