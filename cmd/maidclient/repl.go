package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"maidclient/internal/identity"
	"maidclient/internal/it"
	"maidclient/internal/keystore"
	"maidclient/internal/message"
)

// repl drives the client interactively. Keyrings persist in the local
// keystore so accounts survive across sessions.
func repl(ctx *cli.Context) error {
	cluster, err := newDemoCluster(ctx)
	if err != nil {
		return err
	}
	defer cluster.Close()

	store, err := keystore.Open(ctx.String("keystore"))
	if err != nil {
		return err
	}
	defer store.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "maidclient» ",
		HistoryFile:     "/tmp/maidclient-repl.tmp",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()
	rl.CaptureExitSignal()
	logrus.SetOutput(rl.Stdout())

	fmt.Println("commands: create-account <name> | register-pmid <name> | health <name> | accounts | pending | exit")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			return nil
		}
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			return nil
		}
		if err := replCommand(cluster, store, fields); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func replCommand(cluster *it.Cluster, store *keystore.Store, fields []string) error {
	switch fields[0] {
	case "create-account":
		if len(fields) < 2 {
			return errors.New("usage: create-account <name>")
		}
		name := fields[1]
		kr, err := store.Get(name)
		if errors.Is(err, keystore.ErrNotFound) {
			kr, err = identity.NewKeyring()
			if err != nil {
				return err
			}
			if err := store.Put(name, kr); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		if err := createAccount(cluster.Client, kr); err != nil {
			return err
		}
		fmt.Printf("keyring %q -> maid %s\n", name, kr.Maid.Name)
		return nil

	case "register-pmid":
		if len(fields) < 2 {
			return errors.New("usage: register-pmid <name>")
		}
		kr, err := store.Get(fields[1])
		if err != nil {
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
			if errors.Is(err, message.ErrPmidAlreadyRegistered) {
				fmt.Println("pmid already registered")
				return nil
			}
			return err
		}
		fmt.Printf("registered pmid %s\n", kr.Pmid.Name)
		return nil

	case "health":
		if len(fields) < 2 {
			return errors.New("usage: health <name>")
		}
		kr, err := store.Get(fields[1])
		if err != nil {
			return err
		}
		h, err := cluster.Client.GetPmidHealth(kr.Pmid.Name, 0)
		if err != nil {
			return err
		}
		waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		v, err := h.Await(waitCtx)
		if err != nil {
			return err
		}
		fmt.Printf("pmid %s: %v bytes available\n", kr.Pmid.Name, v)
		return nil

	case "accounts":
		names, err := store.Names()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil

	case "pending":
		fmt.Printf("%d operations in flight\n", cluster.Client.PendingOperations())
		return nil
	}
	return fmt.Errorf("unknown command %q", fields[0])
}
