// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package nodewallet implements a full wallet.Wallet backed by a btcd or
// bitcoind node and a single private key.
//
// Coins are listed with the node's listunspent for the address of the key,
// so the node wallet must already watch that address.  Packets are signed
// locally and published with sendrawtransaction.
package nodewallet

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcescrow/internal/zero"
	"github.com/btcsuite/btcescrow/wallet"
	"github.com/btcsuite/btcescrow/wallet/txauthor"
)

const (
	// defaultMinConf is the confirmation depth a coin needs to be listed.
	defaultMinConf = 1

	// maxConf is the upper confirmation bound passed to listunspent.
	maxConf = 9999999
)

// ErrClosed is returned by every call made after Disconnect.
var ErrClosed = errors.New("node wallet disconnected")

// NodeClient is the subset of the node RPC the wallet uses.  It is
// implemented by *rpcclient.Client.
type NodeClient interface {
	ListUnspentMinMaxAddresses(minConf, maxConf int,
		addrs []btcutil.Address) ([]btcjson.ListUnspentResult, error)

	SendRawTransaction(tx *wire.MsgTx,
		allowHighFees bool) (*chainhash.Hash, error)

	GetBlockCount() (int64, error)

	Shutdown()
}

// Config holds the parameters of a node backed wallet.
type Config struct {
	// Host is the host:port of the node RPC server.
	Host string

	// User and Pass authenticate with the node.
	User string
	Pass string

	// DisableTLS connects over plain HTTP.
	DisableTLS bool

	// Certificates holds the PEM encoded node certificate chain.
	Certificates []byte

	// Params selects the network.
	Params *chaincfg.Params

	// Key is the private key spending the coins.  It is cleared on
	// Disconnect.
	Key *btcutil.WIF

	// AddressType selects which output type of Key is the active
	// account.
	AddressType AddressType

	// MinConf is the confirmation depth a coin needs before it is
	// spent.  Zero uses the default of one.
	MinConf int
}

// Wallet is a full wallet.Wallet driven by a node RPC connection.
type Wallet struct {
	client  NodeClient
	params  *chaincfg.Params
	keys    *keyStore
	minConf int

	mtx    sync.Mutex
	closed bool
}

// A compile-time assertion to ensure that Wallet implements the Wallet
// interface.
var _ wallet.Wallet = (*Wallet)(nil)

// Dial connects to the node described by cfg.
func Dial(cfg *Config) (*Wallet, error) {
	client, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:         cfg.Host,
		User:         cfg.User,
		Pass:         cfg.Pass,
		Certificates: cfg.Certificates,
		DisableTLS:   cfg.DisableTLS,
		HTTPPostMode: true,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to node %v: %w",
			cfg.Host, err)
	}

	w, err := New(client, cfg)
	if err != nil {
		client.Shutdown()
		return nil, err
	}
	return w, nil
}

// New creates a wallet talking to an existing node client.
func New(client NodeClient, cfg *Config) (*Wallet, error) {
	if cfg.Key == nil {
		return nil, errors.New("no private key configured")
	}
	if cfg.Params == nil {
		return nil, errors.New("no network configured")
	}
	if !cfg.Key.IsForNet(cfg.Params) {
		return nil, fmt.Errorf("private key is not for network %v",
			cfg.Params.Name)
	}

	keys, err := newKeyStore(cfg.Key, cfg.AddressType, cfg.Params)
	if err != nil {
		return nil, err
	}

	minConf := cfg.MinConf
	if minConf <= 0 {
		minConf = defaultMinConf
	}

	log.Infof("Node wallet using %v address %v", cfg.AddressType,
		keys.active)

	return &Wallet{
		client:  client,
		params:  cfg.Params,
		keys:    keys,
		minConf: minConf,
	}, nil
}

func (w *Wallet) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mtx.Lock()
	defer w.mtx.Unlock()
	if w.closed {
		return ErrClosed
	}
	return nil
}

// Accounts returns the active address of the key.
func (w *Wallet) Accounts(ctx context.Context) ([]string, error) {
	if err := w.check(ctx); err != nil {
		return nil, err
	}
	return []string{w.keys.active.EncodeAddress()}, nil
}

// PublicKey returns the hex encoded compressed public key.
func (w *Wallet) PublicKey(ctx context.Context) (string, error) {
	if err := w.check(ctx); err != nil {
		return "", err
	}
	return hex.EncodeToString(w.keys.pubKey.SerializeCompressed()), nil
}

// Coins lists the confirmed unspent outputs paying to the active address.
func (w *Wallet) Coins(ctx context.Context) ([]txauthor.Coin, error) {
	if err := w.check(ctx); err != nil {
		return nil, err
	}

	unspent, err := w.client.ListUnspentMinMaxAddresses(
		w.minConf, maxConf, []btcutil.Address{w.keys.active},
	)
	if err != nil {
		return nil, fmt.Errorf("listunspent: %w", err)
	}

	coins := make([]txauthor.Coin, 0, len(unspent))
	for _, u := range unspent {
		coin, err := coinFromResult(&u)
		if err != nil {
			return nil, err
		}
		coins = append(coins, coin)
	}

	log.Debugf("Node reported %d spendable coins for %v", len(coins),
		w.keys.active)

	return coins, nil
}

func coinFromResult(u *btcjson.ListUnspentResult) (txauthor.Coin, error) {
	hash, err := chainhash.NewHashFromStr(u.TxID)
	if err != nil {
		return txauthor.Coin{}, fmt.Errorf("invalid txid %q: %w",
			u.TxID, err)
	}
	amount, err := btcutil.NewAmount(u.Amount)
	if err != nil {
		return txauthor.Coin{}, fmt.Errorf("invalid amount for %v:%d: "+
			"%w", u.TxID, u.Vout, err)
	}
	pkScript, err := hex.DecodeString(u.ScriptPubKey)
	if err != nil {
		return txauthor.Coin{}, fmt.Errorf("invalid script for %v:%d: "+
			"%w", u.TxID, u.Vout, err)
	}

	return txauthor.Coin{
		OutPoint: *wire.NewOutPoint(hash, u.Vout),
		Amount:   amount,
		PkScript: pkScript,
	}, nil
}

// SignPsbt signs every input of packet with the wallet key.  The packet is
// modified in place and returned.
func (w *Wallet) SignPsbt(ctx context.Context,
	packet *psbt.Packet) (*psbt.Packet, error) {

	if err := w.check(ctx); err != nil {
		return nil, err
	}

	if err := txauthor.SignPacket(packet, w.keys); err != nil {
		return nil, err
	}

	log.Debugf("Signed packet for tx %v", packet.UnsignedTx.TxHash())

	return packet, nil
}

// PushPsbt extracts the final transaction from packet and sends it to the
// node.
func (w *Wallet) PushPsbt(ctx context.Context,
	packet *psbt.Packet) (*chainhash.Hash, error) {

	if err := w.check(ctx); err != nil {
		return nil, err
	}

	tx, err := wallet.FinalizeAndExtract(packet)
	if err != nil {
		return nil, err
	}

	txid, err := w.client.SendRawTransaction(tx, false)
	if err != nil {
		return nil, fmt.Errorf("sendrawtransaction: %w", err)
	}

	log.Infof("Broadcast transaction %v", txid)

	return txid, nil
}

// BestHeight returns the height of the node's best block.
func (w *Wallet) BestHeight(ctx context.Context) (uint64, error) {
	if err := w.check(ctx); err != nil {
		return 0, err
	}

	height, err := w.client.GetBlockCount()
	if err != nil {
		return 0, fmt.Errorf("getblockcount: %w", err)
	}
	return uint64(height), nil
}

// Disconnect clears the key and shuts the node connection down.
func (w *Wallet) Disconnect(context.Context) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	zero.WIF(w.keys.wif)
	w.client.Shutdown()

	return nil
}
