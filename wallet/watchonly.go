// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// WatchOnly is a read-only wallet built from a public key.  It identifies
// the user but can not list coins or sign.
type WatchOnly struct {
	pubKey  *btcec.PublicKey
	address *btcutil.AddressTaproot
}

// A compile-time assertion to ensure WatchOnly stays read-only.
var _ Account = (*WatchOnly)(nil)

// NewWatchOnly parses a hex encoded compressed public key and derives its
// key-spend taproot address on params.
func NewWatchOnly(pubKeyHex string,
	params *chaincfg.Params) (*WatchOnly, error) {

	raw, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid public key hex: %w", err)
	}
	pubKey, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}

	addr, err := TaprootAddress(pubKey, params)
	if err != nil {
		return nil, err
	}

	return &WatchOnly{pubKey: pubKey, address: addr}, nil
}

// TaprootAddress returns the BIP0086 key-spend address of pubKey.
func TaprootAddress(pubKey *btcec.PublicKey,
	params *chaincfg.Params) (*btcutil.AddressTaproot, error) {

	outputKey := txscript.ComputeTaprootKeyNoScript(pubKey)
	return btcutil.NewAddressTaproot(
		schnorr.SerializePubKey(outputKey), params,
	)
}

// Accounts returns the taproot address of the watched key.
func (w *WatchOnly) Accounts(context.Context) ([]string, error) {
	return []string{w.address.EncodeAddress()}, nil
}

// PublicKey returns the watched key, hex encoded in compressed form.
func (w *WatchOnly) PublicKey(context.Context) (string, error) {
	return hex.EncodeToString(w.pubKey.SerializeCompressed()), nil
}

// Disconnect is a no-op.
func (w *WatchOnly) Disconnect(context.Context) error {
	return nil
}
