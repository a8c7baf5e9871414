// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrules

import (
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func TestFeePolicyChange(t *testing.T) {
	t.Parallel()

	policy := DefaultFeePolicy()
	require.NoError(t, policy.Validate())
	require.Equal(t, btcutil.Amount(10547), policy.MinInput())

	tests := []struct {
		name    string
		input   btcutil.Amount
		change  btcutil.Amount
		wantErr bool
	}{
		{"below fee", 9000, -1000, true},
		{"exactly fee", 10000, 0, true},
		{"change at dust limit", 10546, 546, true},
		{"change above dust limit", 10547, 547, false},
		{"large input", 1e8, 1e8 - 10000, false},
	}
	for _, test := range tests {
		change, err := policy.Change(test.input)
		require.Equal(t, test.change, change, test.name)
		if test.wantErr {
			require.Truef(t, errors.Is(err, ErrChangeIsDust),
				"%s: %v", test.name, err)
			continue
		}
		require.NoError(t, err, test.name)
	}
}

func TestFeePolicyValidate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, FeePolicy{Fee: -1}.Validate(), ErrAmountNegative)
	require.ErrorIs(t, FeePolicy{Fee: btcutil.MaxSatoshi + 1}.Validate(),
		ErrAmountExceedsMax)
}

func TestIsDustOutput(t *testing.T) {
	t.Parallel()

	p2pkh := make([]byte, 25)
	p2pkh[0] = txscript.OP_DUP

	require.True(t, IsDustOutput(wire.NewTxOut(545, p2pkh),
		DefaultRelayFeePerKb))
	require.False(t, IsDustOutput(wire.NewTxOut(546, p2pkh),
		DefaultRelayFeePerKb))

	// Data carrier outputs are never dust even with zero value.
	nullData := []byte{txscript.OP_RETURN, 0x01, 0xff}
	require.True(t, IsDataCarrier(nullData))
	require.False(t, IsDustOutput(wire.NewTxOut(0, nullData),
		DefaultRelayFeePerKb))
	require.NoError(t, CheckOutput(wire.NewTxOut(0, nullData),
		DefaultRelayFeePerKb))

	require.ErrorIs(t, CheckOutput(wire.NewTxOut(-1, p2pkh),
		DefaultRelayFeePerKb), ErrAmountNegative)
	require.ErrorIs(t, CheckOutput(wire.NewTxOut(1, p2pkh),
		DefaultRelayFeePerKb), ErrOutputIsDust)
}

func TestIsDustOutputWitness(t *testing.T) {
	t.Parallel()

	p2wkh := append([]byte{txscript.OP_0, txscript.OP_DATA_20},
		make([]byte, 20)...)
	p2tr := append([]byte{txscript.OP_1, txscript.OP_DATA_32},
		make([]byte, 32)...)

	tests := []struct {
		name      string
		pkScript  []byte
		threshold int64
	}{
		{name: "p2wkh", pkScript: p2wkh, threshold: 294},
		{name: "p2tr", pkScript: p2tr, threshold: 330},
	}
	for _, test := range tests {
		require.True(t, IsDustOutput(
			wire.NewTxOut(test.threshold-1, test.pkScript),
			DefaultRelayFeePerKb,
		), test.name)
		require.False(t, IsDustOutput(
			wire.NewTxOut(test.threshold, test.pkScript),
			DefaultRelayFeePerKb,
		), test.name)

		// Change just above the flat dust limit always passes.
		require.NoError(t, CheckOutput(
			wire.NewTxOut(int64(DefaultDustLimit)+1,
				test.pkScript),
			DefaultRelayFeePerKb,
		), test.name)
	}

	// Scripts that fail to parse can never be spent.
	require.ErrorIs(t, CheckOutput(
		wire.NewTxOut(100000, []byte{txscript.OP_DATA_5, 0x01}),
		DefaultRelayFeePerKb,
	), ErrOutputIsDust)
}

func TestFeePolicyMeetsRelayFee(t *testing.T) {
	t.Parallel()

	policy := DefaultFeePolicy()
	require.True(t, policy.MeetsRelayFee(200))
	require.True(t, policy.MeetsRelayFee(10000))
	require.False(t, policy.MeetsRelayFee(10001))

	policy.Fee = 150
	require.False(t, policy.MeetsRelayFee(200))
	require.True(t, policy.MeetsRelayFee(150))
}

func TestFeeForSerializeSize(t *testing.T) {
	t.Parallel()

	require.Equal(t, btcutil.Amount(250), FeeForSerializeSize(1000, 250))
	require.Equal(t, btcutil.Amount(1000), FeeForSerializeSize(1000, 0))
}
