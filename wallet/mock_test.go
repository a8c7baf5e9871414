// Copyright (c) 2025-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// This file contains mock implementations of the Account and Wallet
// interfaces used to isolate session logic from real providers.

package wallet

import (
	"context"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcescrow/wallet/txauthor"
	"github.com/stretchr/testify/mock"
)

// mockAccount is a mock implementation of the Account interface.
type mockAccount struct {
	mock.Mock
}

// A compile-time assertion to ensure that mockAccount implements the Account
// interface.
var _ Account = (*mockAccount)(nil)

// Accounts implements the Account interface.
func (m *mockAccount) Accounts(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

// PublicKey implements the Account interface.
func (m *mockAccount) PublicKey(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// Disconnect implements the Account interface.
func (m *mockAccount) Disconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// mockWallet is a mock implementation of the Wallet interface.
type mockWallet struct {
	mockAccount
}

// A compile-time assertion to ensure that mockWallet implements the Wallet
// interface.
var _ Wallet = (*mockWallet)(nil)

// Coins implements the Wallet interface.
func (m *mockWallet) Coins(ctx context.Context) ([]txauthor.Coin, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]txauthor.Coin), args.Error(1)
}

// SignPsbt implements the Wallet interface.
func (m *mockWallet) SignPsbt(ctx context.Context,
	packet *psbt.Packet) (*psbt.Packet, error) {

	args := m.Called(ctx, packet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*psbt.Packet), args.Error(1)
}

// PushPsbt implements the Wallet interface.
func (m *mockWallet) PushPsbt(ctx context.Context,
	packet *psbt.Packet) (*chainhash.Hash, error) {

	args := m.Called(ctx, packet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chainhash.Hash), args.Error(1)
}
