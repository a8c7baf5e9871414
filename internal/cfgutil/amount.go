// Copyright (c) 2015-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
)

// AmountFlag embeds a btcutil.Amount and implements the flags.Marshaler and
// Unmarshaler interfaces so it can be used as a config struct field.
//
// Plain integers and values suffixed with "sat" are read as satoshis,
// values suffixed with "BTC" or containing a decimal point as bitcoin.
type AmountFlag struct {
	btcutil.Amount
}

// NewAmountFlag creates an AmountFlag with a default btcutil.Amount.
func NewAmountFlag(defaultValue btcutil.Amount) *AmountFlag {
	return &AmountFlag{defaultValue}
}

// MarshalFlag satisfies the flags.Marshaler interface.
func (a *AmountFlag) MarshalFlag() (string, error) {
	return strconv.FormatInt(int64(a.Amount), 10) + " sat", nil
}

// UnmarshalFlag satisfies the flags.Unmarshaler interface.
func (a *AmountFlag) UnmarshalFlag(value string) error {
	value = strings.TrimSpace(value)

	var (
		amount btcutil.Amount
		err    error
	)
	switch {
	case strings.HasSuffix(value, "sat"):
		amount, err = parseSatoshis(strings.TrimSuffix(value, "sat"))

	case strings.HasSuffix(value, "BTC"), strings.Contains(value, "."):
		amount, err = parseBitcoin(strings.TrimSuffix(value, "BTC"))

	default:
		amount, err = parseSatoshis(value)
	}
	if err != nil {
		return err
	}
	if amount < 0 {
		return fmt.Errorf("negative amount %v", amount)
	}

	a.Amount = amount
	return nil
}

func parseSatoshis(s string) (btcutil.Amount, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if btcutil.Amount(n) > btcutil.MaxSatoshi {
		return 0, fmt.Errorf("amount %d exceeds the supply", n)
	}
	return btcutil.Amount(n), nil
}

func parseBitcoin(s string) (btcutil.Amount, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return btcutil.NewAmount(f)
}
