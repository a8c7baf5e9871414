// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcescrow/wallet/txauthor"
	"github.com/btcsuite/btcescrow/wallet/txrules"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// keySecrets is a txauthor.SecretsSource holding a single key.
type keySecrets struct {
	key *btcec.PrivateKey
}

func (s *keySecrets) GetKey(btcutil.Address) (*btcec.PrivateKey, bool,
	error) {

	return s.key, true, nil
}

func (s *keySecrets) GetScript(btcutil.Address) ([]byte, error) {
	return nil, errors.New("no scripts")
}

func (s *keySecrets) ChainParams() *chaincfg.Params {
	return &chaincfg.RegressionNetParams
}

// testPacket returns an unsigned funding packet spending a taproot coin of
// key.
func testPacket(t *testing.T, key *btcec.PrivateKey) *psbt.Packet {
	t.Helper()

	addr, err := TaprootAddress(key.PubKey(), &chaincfg.RegressionNetParams)
	require.NoError(t, err)
	pkScript, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	tx, err := txauthor.NewFundingTx(txauthor.Coin{
		OutPoint: wire.OutPoint{Hash: chainhash.Hash{1}, Index: 2},
		Amount:   50000,
		PkScript: pkScript,
	}, "contract", []byte{1, 2, 3, 4}, txrules.DefaultFeePolicy())
	require.NoError(t, err)

	packet, err := tx.Packet()
	require.NoError(t, err)
	return packet
}

func TestPsbtHex(t *testing.T) {
	t.Parallel()

	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	packet := testPacket(t, key)

	encoded, err := EncodePsbtHex(packet)
	require.NoError(t, err)
	require.Equal(t, "70736274ff", encoded[:10])

	decoded, err := DecodePsbtHex(encoded)
	require.NoError(t, err)
	require.Equal(t, packet.UnsignedTx.TxHash(),
		decoded.UnsignedTx.TxHash())
	require.Equal(t, packet.Inputs[0].TaprootInternalKey,
		decoded.Inputs[0].TaprootInternalKey)
	require.Equal(t, packet.Inputs[0].WitnessUtxo,
		decoded.Inputs[0].WitnessUtxo)

	_, err = DecodePsbtHex("zz")
	require.Error(t, err)
	_, err = DecodePsbtHex("00")
	require.Error(t, err)
}

func TestFinalizeAndExtract(t *testing.T) {
	t.Parallel()

	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	packet := testPacket(t, key)

	_, err = FinalizeAndExtract(packet)
	require.Error(t, err)

	require.NoError(t, txauthor.SignPacket(packet, &keySecrets{key: key}))
	tx, err := FinalizeAndExtract(packet)
	require.NoError(t, err)
	require.Len(t, tx.TxIn[0].Witness, 1)
	require.Len(t, tx.TxIn[0].Witness[0], 64)
}

func TestSignAndPushPacket(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	packet := testPacket(t, key)

	signed := testPacket(t, key)
	require.NoError(t, txauthor.SignPacket(signed, &keySecrets{key: key}))
	txid := signed.UnsignedTx.TxHash()

	w := &mockWallet{}
	w.On("SignPsbt", mock.Anything, packet).Return(signed, nil).Once()
	w.On("PushPsbt", mock.Anything, signed).Return(&txid, nil).Once()

	got, err := SignPacket(ctx, w, packet)
	require.NoError(t, err)
	require.True(t, got.IsComplete())

	hash, err := PushPacket(ctx, w, got)
	require.NoError(t, err)
	require.Equal(t, txid, *hash)

	w.AssertExpectations(t)
}

func TestSignAndPushPacketErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	packet := testPacket(t, key)

	w := &mockWallet{}
	w.On("SignPsbt", mock.Anything, packet).Return(
		nil, errors.New("User rejected the request."),
	).Once()
	w.On("PushPsbt", mock.Anything, packet).Return(
		nil, errors.New("bad-txns-inputs-missingorspent"),
	).Once()

	_, err = SignPacket(ctx, w, packet)
	require.ErrorIs(t, err, ErrSigningRejected)
	require.ErrorContains(t, err, "User rejected the request.")

	_, err = PushPacket(ctx, w, packet)
	require.ErrorIs(t, err, ErrBroadcastFailed)
	require.ErrorContains(t, err, "missingorspent")

	// An unsigned packet handed back can not be finalized.
	unsigned := &mockWallet{}
	unsigned.On("SignPsbt", mock.Anything, packet).Return(packet, nil)
	_, err = SignPacket(ctx, unsigned, packet)
	require.ErrorIs(t, err, ErrSigningRejected)
}
