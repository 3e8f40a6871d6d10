// Package config holds the client configuration: peer-group size, the
// per-operation quorum policies, and sweep timing. Thresholds are policy,
// not constants; tests and deployments tune them here.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// QuorumPolicy configures one operation kind.
type QuorumPolicy struct {
	// Threshold is how many successful responses declare the operation
	// successful.
	Threshold int `yaml:"threshold"`
	// Expected is how many responses the operation waits for at most.
	Expected int `yaml:"expected"`
	// Timeout bounds the wait; the default applies when a call passes zero.
	Timeout time.Duration `yaml:"timeout"`
	// Correlated selects quorum correlation. When false the operation is
	// fire-and-forget: one dispatch, no pending entry, no responses awaited.
	Correlated bool `yaml:"correlated"`
}

// UnmarshalYAML overlays the file's fields onto the policy's current values,
// so partial policy blocks keep defaults for whatever they leave out.
// Timeouts are written as Go duration strings ("10s", "500ms").
func (p *QuorumPolicy) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		Threshold  int    `yaml:"threshold"`
		Expected   int    `yaml:"expected"`
		Timeout    string `yaml:"timeout"`
		Correlated bool   `yaml:"correlated"`
	}{
		Threshold:  p.Threshold,
		Expected:   p.Expected,
		Correlated: p.Correlated,
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	p.Threshold = raw.Threshold
	p.Expected = raw.Expected
	p.Correlated = raw.Correlated
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("parse timeout %q: %w", raw.Timeout, err)
		}
		p.Timeout = d
	}
	return nil
}

// Operations groups the per-operation policies.
type Operations struct {
	CreateAccount  QuorumPolicy `yaml:"create_account"`
	RemoveAccount  QuorumPolicy `yaml:"remove_account"`
	RegisterPmid   QuorumPolicy `yaml:"register_pmid"`
	UnregisterPmid QuorumPolicy `yaml:"unregister_pmid"`
	PmidHealth     QuorumPolicy `yaml:"pmid_health"`
}

// Config is the full client configuration.
type Config struct {
	// GroupSize is how many peers a request is normally addressed to.
	GroupSize int `yaml:"group_size"`
	// SweepInterval is how often the pending table checks for expired
	// operations.
	SweepInterval time.Duration `yaml:"sweep_interval"`
	Operations    Operations    `yaml:"operations"`
}

// UnmarshalYAML overlays the file's fields onto the current configuration.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		GroupSize     int        `yaml:"group_size"`
		SweepInterval string     `yaml:"sweep_interval"`
		Operations    Operations `yaml:"operations"`
	}{
		GroupSize:  c.GroupSize,
		Operations: c.Operations,
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	c.GroupSize = raw.GroupSize
	c.Operations = raw.Operations
	if raw.SweepInterval != "" {
		d, err := time.ParseDuration(raw.SweepInterval)
		if err != nil {
			return fmt.Errorf("parse sweep_interval %q: %w", raw.SweepInterval, err)
		}
		c.SweepInterval = d
	}
	return nil
}

// DefaultGroupSize mirrors the overlay's usual close-group size.
const DefaultGroupSize = 4

// Default returns the baseline configuration: threshold and expected count
// of group_size-1 for every correlated operation, 10s timeouts, and
// fire-and-forget account removal and pmid deregistration.
func Default() *Config {
	quorum := QuorumPolicy{
		Threshold:  DefaultGroupSize - 1,
		Expected:   DefaultGroupSize - 1,
		Timeout:    10 * time.Second,
		Correlated: true,
	}
	fireForget := quorum
	fireForget.Correlated = false
	return &Config{
		GroupSize:     DefaultGroupSize,
		SweepInterval: 100 * time.Millisecond,
		Operations: Operations{
			CreateAccount:  quorum,
			RemoveAccount:  fireForget,
			RegisterPmid:   quorum,
			UnregisterPmid: fireForget,
			PmidHealth:     quorum,
		},
	}
}

// Load reads a YAML file over the defaults, so files only state what they
// change.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.GroupSize < 1 {
		return fmt.Errorf("group_size must be >= 1, got %d", c.GroupSize)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive, got %v", c.SweepInterval)
	}
	checks := []struct {
		name string
		pol  QuorumPolicy
	}{
		{"create_account", c.Operations.CreateAccount},
		{"remove_account", c.Operations.RemoveAccount},
		{"register_pmid", c.Operations.RegisterPmid},
		{"unregister_pmid", c.Operations.UnregisterPmid},
		{"pmid_health", c.Operations.PmidHealth},
	}
	for _, chk := range checks {
		if !chk.pol.Correlated {
			continue
		}
		if chk.pol.Threshold < 1 {
			return fmt.Errorf("%s: threshold must be >= 1, got %d", chk.name, chk.pol.Threshold)
		}
		if chk.pol.Expected < chk.pol.Threshold {
			return fmt.Errorf("%s: expected %d below threshold %d",
				chk.name, chk.pol.Expected, chk.pol.Threshold)
		}
		if chk.pol.Timeout <= 0 {
			return fmt.Errorf("%s: timeout must be positive, got %v", chk.name, chk.pol.Timeout)
		}
	}
	return nil
}
