// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package escrow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcescrow/chain"
	"github.com/btcsuite/btcescrow/contract"
	"github.com/btcsuite/btcescrow/wallet"
	"github.com/btcsuite/btcescrow/wallet/txauthor"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockWallet is a mock implementation of the wallet.Wallet interface.  When
// SignPsbt is expected to succeed the packet is signed with key.
type mockWallet struct {
	mock.Mock

	key      *btcec.PrivateKey
	pkScript []byte
}

// A compile-time assertion to ensure that mockWallet implements the Wallet
// interface.
var _ wallet.Wallet = (*mockWallet)(nil)

func newMockWallet(t *testing.T) *mockWallet {
	t.Helper()

	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	addr, err := wallet.TaprootAddress(
		key.PubKey(), &chaincfg.RegressionNetParams,
	)
	require.NoError(t, err)
	pkScript, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	return &mockWallet{key: key, pkScript: pkScript}
}

// coins returns coins of the wallet worth amounts.
func (m *mockWallet) coins(amounts ...btcutil.Amount) []txauthor.Coin {
	coins := make([]txauthor.Coin, len(amounts))
	for i, amt := range amounts {
		coins[i] = txauthor.Coin{
			OutPoint: wire.OutPoint{
				Hash:  chainhash.Hash{byte(i + 1)},
				Index: uint32(i),
			},
			Amount:   amt,
			PkScript: m.pkScript,
		}
	}
	return coins
}

func (m *mockWallet) Accounts(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockWallet) PublicKey(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockWallet) Disconnect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockWallet) Coins(ctx context.Context) ([]txauthor.Coin, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]txauthor.Coin), args.Error(1)
}

func (m *mockWallet) SignPsbt(ctx context.Context,
	packet *psbt.Packet) (*psbt.Packet, error) {

	args := m.Called(ctx, packet)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	if err := txauthor.SignPacket(packet, &keySecrets{m.key}); err != nil {
		return nil, err
	}
	return packet, nil
}

func (m *mockWallet) PushPsbt(ctx context.Context,
	packet *psbt.Packet) (*chainhash.Hash, error) {

	args := m.Called(ctx, packet)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	tx, err := wallet.FinalizeAndExtract(packet)
	if err != nil {
		return nil, err
	}
	txid := tx.TxHash()
	return &txid, nil
}

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

// fakeCaller answers read-only calls from a table keyed by calldata hex.
type fakeCaller struct {
	mtx     sync.Mutex
	results map[string]*string
	err     error
	calls   []string
}

// A compile-time assertion to ensure that fakeCaller implements the Caller
// interface.
var _ chain.Caller = (*fakeCaller)(nil)

func (f *fakeCaller) Call(_ context.Context, _ string,
	calldata contract.Calldata) (*string, error) {

	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.calls = append(f.calls, calldata.Hex())
	if f.err != nil {
		return nil, f.err
	}
	return f.results[calldata.Hex()], nil
}

func strPtr(s string) *string {
	return &s
}
