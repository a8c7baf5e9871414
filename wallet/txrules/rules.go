// Copyright (c) 2016-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrules

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// DefaultRelayFeePerKb is the default minimum relay fee policy for a
// mempool.
const DefaultRelayFeePerKb btcutil.Amount = 1e3

// DefaultFee is the flat fee, in satoshis, paid by every contract call
// transaction.
const DefaultFee btcutil.Amount = 10000

// DefaultDustLimit is the largest change value still considered dust.  It is
// the dust threshold of a P2PKH output at the default relay fee, and so at
// least the threshold of every other standard output.
const DefaultDustLimit btcutil.Amount = 546

const (
	// redeemInputSize is the average size of an input spending a
	// compressed P2PKH output.
	redeemInputSize = 148

	// witnessRedeemInputSize is the virtual size of an input spending a
	// witness program: outpoint, empty script, sequence and a 107 byte
	// witness at a quarter of its weight.
	witnessRedeemInputSize = 32 + 4 + 1 + 107/4 + 4
)

// IsDustAmount determines whether a transaction output value and script
// length would cause the output to be considered dust.  Transactions with
// dust outputs are not standard and are rejected by mempools with default
// policies.  The output is assumed to be redeemed by a P2PKH input.
func IsDustAmount(amount btcutil.Amount, scriptSize int,
	relayFeePerKb btcutil.Amount) bool {

	return isDust(amount, scriptSize, redeemInputSize, relayFeePerKb)
}

// isDust reports whether the cost to the network of an output and the input
// redeeming it, both in bytes, exceeds a third of amount at the relay fee.
func isDust(amount btcutil.Amount, scriptSize, inputSize int,
	relayFeePerKb btcutil.Amount) bool {

	totalSize := 8 + wire.VarIntSerializeSize(uint64(scriptSize)) +
		scriptSize + inputSize

	return int64(amount)*1000/(3*int64(totalSize)) < int64(relayFeePerKb)
}

// IsDustOutput determines whether a transaction output is considered dust.
// Witness programs are priced with the discounted size of their redeeming
// input.
func IsDustOutput(output *wire.TxOut, relayFeePerKb btcutil.Amount) bool {
	// Unspendable outputs which solely carry data are not checked for dust.
	if IsDataCarrier(output.PkScript) {
		return false
	}

	// All other unspendable outputs are considered dust.
	if txscript.IsUnspendable(output.PkScript) {
		return true
	}

	inputSize := redeemInputSize
	if txscript.IsWitnessProgram(output.PkScript) {
		inputSize = witnessRedeemInputSize
	}
	return isDust(btcutil.Amount(output.Value), len(output.PkScript),
		inputSize, relayFeePerKb)
}

// IsDataCarrier reports whether pkScript starts with OP_RETURN and so can only
// carry data.
func IsDataCarrier(pkScript []byte) bool {
	return len(pkScript) > 0 && pkScript[0] == txscript.OP_RETURN
}

// Transaction rule violations
var (
	ErrAmountNegative = errors.New(
		"transaction output amount is negative")
	ErrAmountExceedsMax = errors.New(
		"transaction output amount exceeds maximum value")
	ErrOutputIsDust = errors.New("transaction output is dust")
	ErrChangeIsDust = errors.New(
		"change output is at or below the dust limit")
)

// CheckOutput performs simple consensus and policy tests on a transaction
// output.
func CheckOutput(output *wire.TxOut, relayFeePerKb btcutil.Amount) error {
	if output.Value < 0 {
		return ErrAmountNegative
	}
	if output.Value > btcutil.MaxSatoshi {
		return ErrAmountExceedsMax
	}
	if IsDustOutput(output, relayFeePerKb) {
		return ErrOutputIsDust
	}
	return nil
}

// FeeForSerializeSize calculates the required fee for a transaction of some
// arbitrary size given a mempool's relay fee policy.
func FeeForSerializeSize(relayFeePerKb btcutil.Amount,
	txSerializeSize int) btcutil.Amount {

	fee := relayFeePerKb * btcutil.Amount(txSerializeSize) / 1000

	if fee == 0 && relayFeePerKb > 0 {
		fee = relayFeePerKb
	}

	if fee < 0 || fee > btcutil.MaxSatoshi {
		fee = btcutil.MaxSatoshi
	}

	return fee
}

// FeePolicy is the flat-fee policy applied to contract call transactions.
// Fees are not derived from a fee rate: every transaction pays Fee and the
// remainder of its single input returns as change, which must stay above
// DustLimit.
type FeePolicy struct {
	// Fee is the absolute fee paid by each transaction.
	Fee btcutil.Amount

	// DustLimit is the largest change value that is still rejected.
	DustLimit btcutil.Amount
}

// DefaultFeePolicy returns the policy using DefaultFee and DefaultDustLimit.
func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		Fee:       DefaultFee,
		DustLimit: DefaultDustLimit,
	}
}

// Validate checks the policy values are usable.
func (p FeePolicy) Validate() error {
	if p.Fee < 0 || p.DustLimit < 0 {
		return ErrAmountNegative
	}
	if p.Fee > btcutil.MaxSatoshi || p.DustLimit > btcutil.MaxSatoshi {
		return ErrAmountExceedsMax
	}
	return nil
}

// MeetsRelayFee reports whether the flat fee pays at least the default
// minimum relay fee of a transaction of virtual size vsize.
func (p FeePolicy) MeetsRelayFee(vsize int) bool {
	return p.Fee >= FeeForSerializeSize(DefaultRelayFeePerKb, vsize)
}

// MinInput is the smallest input value that funds a transaction under the
// policy.
func (p FeePolicy) MinInput() btcutil.Amount {
	return p.Fee + p.DustLimit + 1
}

// Change returns the change left from spending input under the policy.  An
// error wrapping ErrChangeIsDust is returned when the change would be at or
// below the dust limit.
func (p FeePolicy) Change(input btcutil.Amount) (btcutil.Amount, error) {
	change := input - p.Fee
	if change <= p.DustLimit {
		return change, fmt.Errorf("%w: input %d sat, fee %d sat, "+
			"change %d sat, dust limit %d sat", ErrChangeIsDust,
			int64(input), int64(p.Fee), int64(change),
			int64(p.DustLimit))
	}
	return change, nil
}
