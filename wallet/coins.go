// Copyright (c) 2017-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcescrow/wallet/txauthor"
)

// coinJSON is the shape browser wallets use to describe a spendable output.
type coinJSON struct {
	TransactionID string     `json:"transactionId"`
	OutputIndex   uint32     `json:"outputIndex"`
	Value         coinValue  `json:"value"`
	ScriptPubKey  scriptJSON `json:"scriptPubKey"`
}

type scriptJSON struct {
	Hex string `json:"hex"`
}

// coinValue is a satoshi value that may be given as a JSON number or as a
// decimal string.
type coinValue int64

func (v *coinValue) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid coin value %s: %v", b, err)
	}
	*v = coinValue(n)
	return nil
}

// ParseCoins decodes a JSON array of wallet coins.
func ParseCoins(data []byte) ([]txauthor.Coin, error) {
	var raw []coinJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unable to decode coins: %w", err)
	}

	coins := make([]txauthor.Coin, 0, len(raw))
	for i, c := range raw {
		coin, err := c.coin()
		if err != nil {
			return nil, fmt.Errorf("coin %d: %w", i, err)
		}
		coins = append(coins, coin)
	}

	log.Tracef("Parsed %d %s", len(coins), pickNoun(len(coins), "coin",
		"coins"))

	return coins, nil
}

func (c *coinJSON) coin() (txauthor.Coin, error) {
	hash, err := chainhash.NewHashFromStr(c.TransactionID)
	if err != nil {
		return txauthor.Coin{}, err
	}
	if c.Value < 0 || btcutil.Amount(c.Value) > btcutil.MaxSatoshi {
		return txauthor.Coin{}, fmt.Errorf("value %d out of range",
			c.Value)
	}
	pkScript, err := hex.DecodeString(c.ScriptPubKey.Hex)
	if err != nil {
		return txauthor.Coin{}, fmt.Errorf("invalid script: %v", err)
	}
	if len(pkScript) == 0 {
		return txauthor.Coin{}, fmt.Errorf("missing script")
	}

	return txauthor.Coin{
		OutPoint: *wire.NewOutPoint(hash, c.OutputIndex),
		Amount:   btcutil.Amount(c.Value),
		PkScript: pkScript,
	}, nil
}

// MarshalCoins encodes coins in the same JSON shape ParseCoins accepts.
func MarshalCoins(coins []txauthor.Coin) ([]byte, error) {
	raw := make([]coinJSON, len(coins))
	for i, coin := range coins {
		raw[i] = coinJSON{
			TransactionID: coin.OutPoint.Hash.String(),
			OutputIndex:   coin.OutPoint.Index,
			Value:         coinValue(coin.Amount),
			ScriptPubKey: scriptJSON{
				Hex: hex.EncodeToString(coin.PkScript),
			},
		}
	}
	return json.Marshal(raw)
}
