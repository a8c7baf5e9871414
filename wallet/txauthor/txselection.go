// Copyright (c) 2016-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txauthor

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcescrow/wallet/txrules"
)

var (
	// ErrNoFunds is returned when the wallet reports no spendable coins.
	ErrNoFunds = errors.New("no spendable coins available")

	// ErrInsufficientBalance is returned when the largest spendable coin
	// can not pay the fee and leave change above the dust limit.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Coin is a spendable output offered by a wallet.
type Coin struct {
	// OutPoint identifies the output.
	OutPoint wire.OutPoint

	// Amount is the value of the output.
	Amount btcutil.Amount

	// PkScript is the locking script of the output.
	PkScript []byte
}

// InsufficientBalanceError is defined so that we can signal the missing
// amount to the calling software.  It matches ErrInsufficientBalance with
// errors.Is.
type InsufficientBalanceError struct {
	// Available is the value of the best coin found.
	Available btcutil.Amount

	// Fee is the flat fee the transaction must pay.
	Fee btcutil.Amount

	// DustLimit is the largest change value that is rejected.
	DustLimit btcutil.Amount
}

// Error returns a description of the shortfall.
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: largest coin %v, fee %v, "+
		"minimum input %v", e.Available, e.Fee,
		e.Fee+e.DustLimit+1)
}

// Is allows errors.Is to match ErrInsufficientBalance.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// Missing returns how many satoshis the best coin lacks.
func (e *InsufficientBalanceError) Missing() btcutil.Amount {
	return e.Fee + e.DustLimit + 1 - e.Available
}

// LargestCoin returns the coin with the greatest value.  Ties go to the coin
// encountered first, so the result is stable for a given input order.
func LargestCoin(coins []Coin) (Coin, error) {
	if len(coins) == 0 {
		return Coin{}, ErrNoFunds
	}

	best := 0
	for i := 1; i < len(coins); i++ {
		if coins[i].Amount > coins[best].Amount {
			best = i
		}
	}
	return coins[best], nil
}

// SelectCoin picks the single coin that funds a contract call under policy:
// the largest coin, provided it leaves change above the dust limit after
// paying the fee.  Multiple coins are never combined.
func SelectCoin(coins []Coin, policy txrules.FeePolicy) (Coin, error) {
	coin, err := LargestCoin(coins)
	if err != nil {
		return Coin{}, err
	}

	if _, err := policy.Change(coin.Amount); err != nil {
		return Coin{}, &InsufficientBalanceError{
			Available: coin.Amount,
			Fee:       policy.Fee,
			DustLimit: policy.DustLimit,
		}
	}

	log.Debugf("Selected coin %v worth %v out of %d %s", coin.OutPoint,
		coin.Amount, len(coins), pickNoun(len(coins), "coin", "coins"))

	return coin, nil
}

// pickNoun returns the singular or plural form of a noun depending
// on the count n.
func pickNoun(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
