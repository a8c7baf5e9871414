// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/holiman/uint256"
)

// BaseUnitsPerCoin is the scaling between a displayed price and the base
// units stored in the contract's price fields.
const BaseUnitsPerCoin = btcutil.SatoshiPerBitcoin

// U256FromBig converts v to a 256-bit unsigned field value.  Negative values
// and values wider than 256 bits are rejected.
func U256FromBig(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return nil, encodingErrorf("missing value")
	}
	if v.Sign() < 0 {
		return nil, encodingErrorf("negative value %v", v)
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, encodingErrorf("value %v exceeds 256 bits", v)
	}
	return u, nil
}

// U64FromBig converts v to a 64-bit unsigned field value.  Negative values
// and values wider than 64 bits are rejected.
func U64FromBig(v *big.Int) (uint64, error) {
	if v == nil {
		return 0, encodingErrorf("missing value")
	}
	if v.Sign() < 0 {
		return 0, encodingErrorf("negative value %v", v)
	}
	if !v.IsUint64() {
		return 0, encodingErrorf("value %v exceeds 64 bits", v)
	}
	return v.Uint64(), nil
}

// U64FromInt64 converts a signed integer to a 64-bit unsigned field value,
// rejecting negative input.
func U64FromInt64(v int64) (uint64, error) {
	if v < 0 {
		return 0, encodingErrorf("negative value %d", v)
	}
	return uint64(v), nil
}

// PriceFromAmount converts a satoshi amount to a 256-bit price field.
func PriceFromAmount(amt btcutil.Amount) (*uint256.Int, error) {
	if amt < 0 {
		return nil, encodingErrorf("negative amount %v", amt)
	}
	return uint256.NewInt(uint64(amt)), nil
}

// ParsePrice parses a decimal price expressed in whole coins, optionally
// suffixed with " BTC", and scales it to base units.  The conversion is
// exact: inputs with more than eight fractional digits are rejected rather
// than rounded.
func ParsePrice(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "BTC"))
	if s == "" {
		return nil, encodingErrorf("empty price")
	}

	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, encodingErrorf("invalid price %q", s)
	}
	r.Mul(r, new(big.Rat).SetInt64(BaseUnitsPerCoin))
	if !r.IsInt() {
		return nil, encodingErrorf("price %q has more than eight "+
			"decimal places", s)
	}

	return U256FromBig(r.Num())
}

// FormatPrice renders a base-unit price in whole coins with eight decimal
// places.
func FormatPrice(p *uint256.Int) string {
	if p == nil {
		return "0.00000000"
	}
	q, m := new(big.Int).DivMod(
		p.ToBig(), big.NewInt(BaseUnitsPerCoin), new(big.Int),
	)
	frac := m.String()
	return q.String() + "." + strings.Repeat("0", 8-len(frac)) + frac
}
