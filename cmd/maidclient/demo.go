package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"maidclient/internal/client"
	"maidclient/internal/config"
	"maidclient/internal/identity"
	"maidclient/internal/it"
	"maidclient/internal/message"
)

// loadConfig resolves the --config flag, falling back to defaults.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	if path := ctx.String("config"); path != "" {
		return config.Load(path)
	}
	return config.Default(), nil
}

// newDemoCluster stands up an in-process vault group sized to the config.
func newDemoCluster(ctx *cli.Context) (*it.Cluster, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return it.NewCluster(it.Options{Config: cfg})
}

// demo runs the canonical account-creation flow: generate an identity pair,
// create the account with a bounded wait, and treat "already exists" as a
// survivable outcome.
func demo(ctx *cli.Context) error {
	cluster, err := newDemoCluster(ctx)
	if err != nil {
		return err
	}
	defer cluster.Close()

	kr, err := identity.NewKeyring()
	if err != nil {
		return err
	}
	if err := createAccount(cluster.Client, kr); err != nil {
		return err
	}

	reg, err := identity.NewRegistration(kr.Maid.Name, kr.Pmid.Name)
	if err != nil {
		return err
	}
	h, err := cluster.Client.RegisterPmid(reg, 0)
	if err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := h.Await(waitCtx); err != nil {
		return fmt.Errorf("register pmid: %w", err)
	}
	fmt.Printf("registered pmid %s\n", kr.Pmid.Name)

	hh, err := cluster.Client.GetPmidHealth(kr.Pmid.Name, 0)
	if err != nil {
		return err
	}
	v, err := hh.Await(waitCtx)
	if err != nil {
		return fmt.Errorf("pmid health: %w", err)
	}
	fmt.Printf("pmid health: %v bytes available\n", v)
	return nil
}

// createAccount waits up to ten seconds and tolerates an existing account.
func createAccount(c *client.Client, kr identity.Keyring) error {
	h, err := c.CreateAccount(kr.Maid, kr.Anmaid, 0)
	if err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := h.Await(waitCtx); err != nil {
		if errors.Is(err, message.ErrAccountAlreadyExists) {
			logrus.Info("account already existed")
			return nil
		}
		return fmt.Errorf("create account: %w", err)
	}
	fmt.Printf("account created for maid %s\n", kr.Maid.Name)
	return nil
}
