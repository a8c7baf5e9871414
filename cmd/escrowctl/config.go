// Copyright (c) 2013-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcescrow/internal/cfgutil"
	"github.com/btcsuite/btcescrow/netparams"
	"github.com/btcsuite/btcescrow/wallet/nodewallet"
	"github.com/btcsuite/btcescrow/wallet/txrules"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "escrowctl.conf"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "escrowctl.log"
	defaultTimeout        = 2 * time.Minute
	defaultStatusLimit    = 10
)

var (
	escrowctlHomeDir  = btcutil.AppDataDir("escrowctl", false)
	defaultConfigFile = filepath.Join(escrowctlHomeDir, defaultConfigFilename)
	defaultDataDir    = escrowctlHomeDir
	defaultLogDir     = filepath.Join(escrowctlHomeDir, defaultLogDirname)
)

type config struct {
	// General application behavior
	ConfigFile string        `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir    string        `short:"b" long:"datadir" description:"Directory holding the submission journal"`
	LogDir     string        `long:"logdir" description:"Directory to log output"`
	DebugLevel string        `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	TestNet3   bool          `long:"testnet" description:"Use the test network (default mainnet)"`
	RegTest    bool          `long:"regtest" description:"Use the regression test network"`
	SigNet     bool          `long:"signet" description:"Use the signet test network"`
	NoJournal  bool          `long:"nojournal" description:"Do not record broadcast calls in the local journal"`
	Timeout    time.Duration `long:"timeout" description:"Give up on a command after this long"`

	// Contract options
	RPCEndpoint *cfgutil.ExplicitString `long:"rpcendpoint" description:"URL of the contract node JSON-RPC endpoint (default depends on the network)"`
	Contract    string                  `long:"contract" description:"Address of the escrow contract"`
	Fee         *cfgutil.AmountFlag     `long:"fee" description:"Flat fee paid by every contract call"`

	// Wallet options
	WIF         string                 `long:"wif" default-mask:"-" description:"Private key, in WIF, spending the coins of the node wallet"`
	PubKey      string                 `long:"pubkey" description:"Hex encoded public key of a watch-only session"`
	AddressType nodewallet.AddressType `long:"addresstype" description:"Output type of the private key that holds the coins {p2tr, p2wkh, np2wkh, p2pkh}"`
	MinConf     int                    `long:"minconf" description:"Confirmations a coin needs before it is spent"`

	// Node RPC options
	NodeConnect string `short:"c" long:"nodeconnect" description:"Hostname/IP and port of the bitcoin node RPC server (default localhost with the network RPC port)"`
	NodeUser    string `short:"u" long:"nodeuser" description:"Username for node RPC authentication"`
	NodePass    string `short:"P" long:"nodepass" default-mask:"-" description:"Password for node RPC authentication"`
	CAFile      string `long:"cafile" description:"File containing root certificates to authenticate a TLS connection with the node"`
	DisableTLS  bool   `long:"notls" description:"Disable TLS for the node RPC connection"`
}

// loadConfig initializes and parses the config using a config file and
// command line options.  The remaining positional arguments are returned
// for the command dispatcher.
func loadConfig() (*config, []string, error) {
	// Default config.
	cfg := config{
		ConfigFile:  defaultConfigFile,
		DataDir:     defaultDataDir,
		LogDir:      defaultLogDir,
		DebugLevel:  defaultLogLevel,
		Timeout:     defaultTimeout,
		RPCEndpoint: cfgutil.NewExplicitString(""),
		Fee:         cfgutil.NewAmountFlag(txrules.DefaultFee),
		MinConf:     1,
	}

	// A config file in the current directory takes precedence.
	exists, err := cfgutil.FileExists(defaultConfigFilename)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		cfg.ConfigFile = defaultConfigFilename
	}

	// Pre-parse the command line options to see if an alternative config
	// file was specified.
	preCfg := cfg
	preCfg.RPCEndpoint = cfgutil.NewExplicitString("")
	preCfg.Fee = cfgutil.NewAmountFlag(txrules.DefaultFee)
	preParser := flags.NewParser(&preCfg, flags.Default)
	_, err = preParser.Parse()
	if err != nil {
		return nil, nil, err
	}

	// Load additional config from file.
	var configFileError error
	parser := flags.NewParser(&cfg, flags.Default)
	parser.Usage = "[OPTIONS] <command> [args...]\n\n" + commandUsage()
	configFile := cfgutil.CleanAndExpandPath(preCfg.ConfigFile)
	err = flags.NewIniParser(parser).ParseFile(configFile)
	if err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			parser.WriteHelp(os.Stderr)
			return nil, nil, err
		}
		configFileError = err
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}

	// Choose the active network params based on the selected network.
	// Multiple networks can't be selected simultaneously.
	numNets := 0
	if cfg.TestNet3 {
		activeNet = &netparams.TestNet3Params
		numNets++
	}
	if cfg.RegTest {
		activeNet = &netparams.RegressionNetParams
		numNets++
	}
	if cfg.SigNet {
		activeNet = &netparams.SigNetParams
		numNets++
	}
	if numNets > 1 {
		return nil, nil, errors.New("the testnet, regtest and signet " +
			"params can't be used together -- choose one")
	}

	cfg.DataDir = cfgutil.CleanAndExpandPath(cfg.DataDir)
	cfg.DataDir = filepath.Join(cfg.DataDir, activeNet.Name)

	// Append the network type to the log directory so it is "namespaced"
	// per network.
	cfg.LogDir = cfgutil.CleanAndExpandPath(cfg.LogDir)
	cfg.LogDir = filepath.Join(cfg.LogDir, activeNet.Name)

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	// Initialize log rotation.  After log rotation has been initialized,
	// the logger variables may be used.
	initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))

	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return nil, nil, err
	}

	if configFileError != nil {
		log.Warnf("%v", configFileError)
	}

	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}

	return &cfg, remainingArgs, nil
}

// validate checks option combinations and fills in per-network defaults.
func (cfg *config) validate() error {
	endpoint, err := cfgutil.NormalizeEndpoint(
		cfg.RPCEndpoint.OrDefault(activeNet.ContractRPCURL),
	)
	if err != nil {
		return fmt.Errorf("invalid --rpcendpoint: %w", err)
	}
	cfg.RPCEndpoint.Value = endpoint

	if cfg.WIF != "" && cfg.PubKey != "" {
		return errors.New("--wif and --pubkey can't be used together " +
			"-- choose one")
	}

	if cfg.MinConf < 0 {
		return fmt.Errorf("invalid --minconf %d", cfg.MinConf)
	}

	if err := cfg.feePolicy().Validate(); err != nil {
		return fmt.Errorf("invalid --fee: %w", err)
	}

	if cfg.NodeConnect == "" {
		cfg.NodeConnect = "localhost"
	}
	cfg.NodeConnect, err = cfgutil.NormalizeAddress(
		cfg.NodeConnect, activeNet.NodeRPCPort,
	)
	if err != nil {
		return fmt.Errorf("invalid --nodeconnect: %w", err)
	}

	cfg.Contract = strings.TrimSpace(cfg.Contract)
	if cfg.CAFile != "" {
		cfg.CAFile = cfgutil.CleanAndExpandPath(cfg.CAFile)
	}

	return nil
}

// feePolicy returns the fee policy selected by the options.
func (cfg *config) feePolicy() txrules.FeePolicy {
	policy := txrules.DefaultFeePolicy()
	policy.Fee = cfg.Fee.Amount
	return policy
}
