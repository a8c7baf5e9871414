// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"errors"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcescrow/wallet/txauthor"
)

var (
	// ErrWalletUnavailable is returned when no wallet provider is present
	// or the provider exposes no account.
	ErrWalletUnavailable = errors.New("wallet unavailable")

	// ErrReadOnly is returned when a state changing call is attempted
	// through a wallet that can not spend.
	ErrReadOnly = errors.New("wallet is read-only")

	// ErrSigningRejected wraps any failure of the wallet to sign a
	// packet, including the user declining it.
	ErrSigningRejected = errors.New("wallet rejected signing request")

	// ErrBroadcastFailed wraps any failure of the wallet to publish a
	// signed packet.
	ErrBroadcastFailed = errors.New("wallet failed to broadcast")
)

// Account is the read-only capability every wallet provider offers.
//
// It is intended to be the narrow boundary through which the escrow client
// learns who the user is, without any ability to move funds.
type Account interface {
	// Accounts returns the addresses exposed by the wallet.  The first
	// entry is the active account.
	Accounts(ctx context.Context) ([]string, error)

	// PublicKey returns the hex encoded public key of the active account.
	PublicKey(ctx context.Context) (string, error)

	// Disconnect ends the session with the provider.
	Disconnect(ctx context.Context) error
}

// Wallet is the full capability: on top of Account it lists spendable coins,
// signs PSBT packets and publishes them.
type Wallet interface {
	Account

	// Coins returns the spendable outputs of the active account.
	Coins(ctx context.Context) ([]txauthor.Coin, error)

	// SignPsbt signs every input of the packet it holds keys for and
	// returns the signed packet.  Inputs must be finalized on return.
	SignPsbt(ctx context.Context, packet *psbt.Packet) (*psbt.Packet,
		error)

	// PushPsbt extracts the final transaction of a signed packet and
	// broadcasts it, returning its hash.
	PushPsbt(ctx context.Context, packet *psbt.Packet) (*chainhash.Hash,
		error)
}
