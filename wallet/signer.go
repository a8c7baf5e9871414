// Copyright (c) 2020-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// SignPacket asks w to sign packet.  Every failure, including a packet
// returned with unsigned inputs, matches ErrSigningRejected while keeping
// the wallet's own message.
func SignPacket(ctx context.Context, w Wallet,
	packet *psbt.Packet) (*psbt.Packet, error) {

	signed, err := w.SignPsbt(ctx, packet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningRejected, err)
	}
	if signed == nil {
		return nil, fmt.Errorf("%w: no packet returned",
			ErrSigningRejected)
	}
	if !signed.IsComplete() {
		if err := psbt.MaybeFinalizeAll(signed); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSigningRejected,
				err)
		}
	}

	return signed, nil
}

// PushPacket asks w to broadcast a signed packet.  Every failure matches
// ErrBroadcastFailed while keeping the wallet's own message.
func PushPacket(ctx context.Context, w Wallet,
	packet *psbt.Packet) (*chainhash.Hash, error) {

	txid, err := w.PushPsbt(ctx, packet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBroadcastFailed, err)
	}
	if txid == nil {
		return nil, fmt.Errorf("%w: no transaction id returned",
			ErrBroadcastFailed)
	}

	return txid, nil
}
