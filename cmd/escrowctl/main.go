// Copyright (c) 2015-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcescrow/chain"
	"github.com/btcsuite/btcescrow/escrow"
	"github.com/btcsuite/btcescrow/internal/zero"
	"github.com/btcsuite/btcescrow/netparams"
	"github.com/btcsuite/btcescrow/wallet"
	"github.com/btcsuite/btcescrow/wallet/nodewallet"
	flags "github.com/jessevdk/go-flags"
)

var activeNet = &netparams.MainNetParams

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Stderr.Write([]byte{'\n'})
	closeLogRotator()
	os.Exit(1)
}

func errContext(err error, context string) error {
	return fmt.Errorf("%s: %w", context, err)
}

func main() {
	cfg, args, err := loadConfig()
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fatalf("%v", err)
	}
	defer closeLogRotator()

	if len(args) == 0 {
		fatalf("no command given\n\n%s", commandUsage())
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fatalf("unknown command %q\n\n%s", args[0], commandUsage())
	}
	if len(args)-1 < cmd.minArgs || len(args)-1 > cmd.maxArgs {
		fatalf("usage: %s %s", args[0], cmd.usage)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := run(ctx, cfg, cmd, args[1:]); err != nil {
		closeLogRotator()
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		os.Exit(1)
	}
}

// app carries the collaborators built for a command.
type app struct {
	cfg     *config
	client  *escrow.Client
	session *wallet.Session
	node    *nodewallet.Wallet
	journal *escrow.Journal
}

func run(ctx context.Context, cfg *config, cmd *command,
	args []string) error {

	a := &app{cfg: cfg}
	if cmd.offline {
		return cmd.handler(ctx, a, args)
	}

	if !cfg.NoJournal {
		journal, err := escrow.OpenJournal(cfg.DataDir)
		if err != nil {
			return errContext(err, "failed to open journal")
		}
		defer journal.Close()
		a.journal = journal
	}
	if cmd.journalOnly {
		if a.journal == nil {
			return errors.New("the journal is disabled by --nojournal")
		}
		return cmd.handler(ctx, a, args)
	}

	provider, err := openProvider(cfg)
	if err != nil {
		return err
	}
	if node, ok := provider.(*nodewallet.Wallet); ok {
		a.node = node
	}
	if provider != nil {
		session, err := wallet.Connect(ctx, provider)
		if err != nil {
			return errContext(err, "failed to connect wallet")
		}
		defer func() {
			if err := session.Disconnect(context.Background()); err != nil {
				log.Warnf("Unable to disconnect wallet: %v", err)
			}
		}()
		a.session = session
	}

	escrowCfg := &escrow.Config{
		Contract: cfg.Contract,
		Caller: chain.NewContractClient(
			cfg.RPCEndpoint.Value, nil,
		),
		Session: a.session,
		Policy:  cfg.feePolicy(),
	}
	if a.journal != nil {
		escrowCfg.Recorder = a.journal
	}
	a.client, err = escrow.New(escrowCfg)
	if err != nil {
		return err
	}

	return cmd.handler(ctx, a, args)
}

// openProvider returns the wallet selected by the options, or nil when
// neither a private nor a public key is configured.
func openProvider(cfg *config) (wallet.Account, error) {
	switch {
	case cfg.WIF != "":
		wif, err := btcutil.DecodeWIF(cfg.WIF)
		if err != nil {
			return nil, errContext(err, "invalid --wif")
		}

		var certs []byte
		if !cfg.DisableTLS && cfg.CAFile != "" {
			certs, err = os.ReadFile(cfg.CAFile)
			if err != nil {
				zero.WIF(wif)
				return nil, errContext(err, "failed to read --cafile")
			}
		}

		w, err := nodewallet.Dial(&nodewallet.Config{
			Host:         cfg.NodeConnect,
			User:         cfg.NodeUser,
			Pass:         cfg.NodePass,
			DisableTLS:   cfg.DisableTLS,
			Certificates: certs,
			Params:       activeNet.Params,
			Key:          wif,
			AddressType:  cfg.AddressType,
			MinConf:      cfg.MinConf,
		})
		if err != nil {
			zero.WIF(wif)
			return nil, err
		}
		return w, nil

	case cfg.PubKey != "":
		w, err := wallet.NewWatchOnly(cfg.PubKey, activeNet.Params)
		if err != nil {
			return nil, errContext(err, "invalid --pubkey")
		}
		return w, nil
	}

	return nil, nil
}
