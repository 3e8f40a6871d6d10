package it

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"maidclient/internal/client"
	"maidclient/internal/config"
	"maidclient/internal/routing"
)

// Cluster is the in-process test network: a set of fake vaults behind a
// loopback substrate with one client wired to it.
type Cluster struct {
	Client   *client.Client
	Loopback *routing.Loopback
	Vaults   []*Vault
}

// Options configures a harness cluster.
type Options struct {
	// VaultCount is the number of fake vaults; defaults to GroupSize.
	VaultCount int
	// Behaviours assigns per-vault behaviour by index; missing entries
	// default to BehaviourNormal.
	Behaviours map[int]Behaviour
	// AvailableSizes assigns per-vault health figures; missing entries
	// default to 1<<30.
	AvailableSizes map[int]uint64
	// Config overrides the client config; defaults to a fast-sweeping
	// variant of config.Default().
	Config *config.Config
}

// NewCluster wires vaults, loopback and client together. Callers must Close
// the cluster.
func NewCluster(opts Options) (*Cluster, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
		cfg.SweepInterval = 10 * time.Millisecond
	}

	count := opts.VaultCount
	if count <= 0 {
		count = cfg.GroupSize
	}

	log := logrus.NewEntry(logrus.StandardLogger())

	// The loopback needs the client handler before the client needs the
	// sender; indirect through a late-bound handler.
	var c *client.Client
	lb := routing.NewLoopback(cfg.GroupSize, func(data []byte) {
		c.HandleMessage(data)
	}, log.WithField("component", "loopback"))

	vaults := make([]*Vault, 0, count)
	for i := 0; i < count; i++ {
		behaviour := BehaviourNormal
		if b, ok := opts.Behaviours[i]; ok {
			behaviour = b
		}
		size := uint64(1 << 30)
		if s, ok := opts.AvailableSizes[i]; ok {
			size = s
		}
		v := NewVault(fmt.Sprintf("vault-%d", i), behaviour, size)
		vaults = append(vaults, v)
		lb.AddVault(v.id, v.Handle)
	}

	var err error
	c, err = client.New(cfg, lb, log.WithField("component", "client"))
	if err != nil {
		return nil, fmt.Errorf("harness: %w", err)
	}

	return &Cluster{Client: c, Loopback: lb, Vaults: vaults}, nil
}

// Close shuts the client down.
func (c *Cluster) Close() {
	c.Client.Close()
}
