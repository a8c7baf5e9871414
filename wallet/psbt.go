// Copyright (c) 2020-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
)

// EncodePsbtHex serializes packet and returns it hex encoded, the form
// browser wallets accept for signing.
func EncodePsbtHex(packet *psbt.Packet) (string, error) {
	var buf bytes.Buffer
	if err := packet.Serialize(&buf); err != nil {
		return "", fmt.Errorf("unable to serialize psbt: %w", err)
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

// DecodePsbtHex parses a hex encoded packet.
func DecodePsbtHex(s string) (*psbt.Packet, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid psbt hex: %w", err)
	}
	packet, err := psbt.NewFromRawBytes(bytes.NewReader(raw), false)
	if err != nil {
		return nil, fmt.Errorf("unable to parse psbt: %w", err)
	}
	return packet, nil
}

// FinalizeAndExtract finalizes every input of a signed packet that is not
// final yet and returns the network transaction.
func FinalizeAndExtract(packet *psbt.Packet) (*wire.MsgTx, error) {
	if !packet.IsComplete() {
		if err := psbt.MaybeFinalizeAll(packet); err != nil {
			return nil, fmt.Errorf("unable to finalize psbt: %w",
				err)
		}
	}

	tx, err := psbt.Extract(packet)
	if err != nil {
		return nil, fmt.Errorf("unable to extract transaction: %w", err)
	}
	return tx, nil
}
