// Copyright (c) 2016-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txsizes estimates the size of signed contract call transactions.
package txsizes

import (
	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// Worst case input size estimates.  Every input is 32 bytes of previous tx
// hash, 4 bytes of output index, a compact int script length, the script and
// 4 bytes of sequence.
const (
	// RedeemP2PKHInputSize redeems a compressed P2PKH output with a
	// 108 byte signature script (74 byte signature push, 34 byte pubkey
	// push).
	RedeemP2PKHInputSize = 32 + 4 + 1 + 1 + 73 + 1 + 33 + 4

	// RedeemP2WPKHInputSize redeems a P2WPKH output; the signature script
	// must be empty.
	RedeemP2WPKHInputSize = 32 + 4 + 1 + 4

	// RedeemP2TRInputSize redeems a P2TR output by key path; the signature
	// script must be empty.
	RedeemP2TRInputSize = 32 + 4 + 1 + 4

	// RedeemNestedP2WPKHInputSize redeems a P2SH-P2WPKH output whose
	// signature script pushes the 22 byte witness program.
	RedeemNestedP2WPKHInputSize = 32 + 4 + 1 + 1 + 1 + 1 + 20 + 4

	// RedeemP2WPKHInputWitnessWeight is the witness of a (nested) P2WPKH
	// spend: item count, DER signature with sighash flag and compressed
	// pubkey.
	RedeemP2WPKHInputWitnessWeight = 1 + 1 + 73 + 1 + 33

	// RedeemP2TRInputWitnessWeight is the witness of a P2TR key path
	// spend: item count and a schnorr signature with sighash flag.
	RedeemP2TRInputWitnessWeight = 1 + 1 + 65
)

// InputSize returns the worst case base size and witness weight of an input
// spending pkScript.  Unknown script types are assumed to be P2PKH.
func InputSize(pkScript []byte) (baseSize, witnessWeight int) {
	switch {
	// If this is a p2sh output, we assume this is a
	// nested P2WKH.
	case txscript.IsPayToScriptHash(pkScript):
		return RedeemNestedP2WPKHInputSize,
			RedeemP2WPKHInputWitnessWeight

	case txscript.IsPayToWitnessPubKeyHash(pkScript):
		return RedeemP2WPKHInputSize, RedeemP2WPKHInputWitnessWeight

	case txscript.IsPayToTaproot(pkScript):
		return RedeemP2TRInputSize, RedeemP2TRInputWitnessWeight

	default:
		return RedeemP2PKHInputSize, 0
	}
}

// SumOutputSerializeSizes sums up the serialized size of the supplied outputs.
func SumOutputSerializeSizes(outputs []*wire.TxOut) (serializeSize int) {
	for _, txOut := range outputs {
		serializeSize += txOut.SerializeSize()
	}
	return serializeSize
}

// EstimateVirtualSize returns a worst case virtual size estimate of a signed
// transaction with a single input spending prevPkScript and the given
// outputs.
func EstimateVirtualSize(prevPkScript []byte, txOuts []*wire.TxOut) int {
	inputSize, witnessWeight := InputSize(prevPkScript)

	// Version 4 bytes + LockTime 4 bytes + Serialized var int size for the
	// number of transaction inputs and outputs + the input + the outputs.
	baseSize := 8 + wire.VarIntSerializeSize(1) +
		wire.VarIntSerializeSize(uint64(len(txOuts))) +
		inputSize + SumOutputSerializeSizes(txOuts)

	// Witness inputs add the segwit marker and flag plus the witness
	// itself.
	if witnessWeight > 0 {
		witnessWeight += 2
	}

	// We add 3 to the witness weight to make sure the result is
	// always rounded up.
	return baseSize + (witnessWeight+3)/blockchain.WitnessScaleFactor
}
