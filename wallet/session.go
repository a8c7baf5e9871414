// Copyright (c) 2017-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/btcsuite/btcescrow/contract"
)

// Session is a connection to a wallet provider.  Whether the session can
// spend is decided once, when it is created by Connect.
type Session struct {
	account Account
	wallet  Wallet

	address   string
	publicKey string

	mtx          sync.Mutex
	disconnected bool
}

// Connect opens a session with provider.  Providers implementing Wallet get a
// full session, anything else a read-only one.
func Connect(ctx context.Context, provider Account) (*Session, error) {
	if provider == nil {
		return nil, ErrWalletUnavailable
	}

	accounts, err := provider.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWalletUnavailable, err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: no accounts exposed",
			ErrWalletUnavailable)
	}

	pubKey, err := provider.PublicKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWalletUnavailable, err)
	}

	s := &Session{
		account:   provider,
		address:   accounts[0],
		publicKey: pubKey,
	}
	if w, ok := provider.(Wallet); ok {
		s.wallet = w
	}

	mode := "full"
	if s.ReadOnly() {
		mode = "read-only"
	}
	log.Infof("Connected to wallet %v (%s)", s.ShortAddress(), mode)

	return s, nil
}

// Address returns the active account address.
func (s *Session) Address() string {
	return s.address
}

// ShortAddress returns the active account address abbreviated for display.
func (s *Session) ShortAddress() string {
	return contract.ShortAddress(s.address)
}

// PublicKey returns the hex encoded public key of the active account.
func (s *Session) PublicKey() string {
	return s.publicKey
}

// ReadOnly reports whether the session is unable to spend.
func (s *Session) ReadOnly() bool {
	return s.wallet == nil
}

// Wallet returns the full capability of the session.
func (s *Session) Wallet() (Wallet, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	switch {
	case s.disconnected:
		return nil, ErrWalletUnavailable
	case s.wallet == nil:
		return nil, ErrReadOnly
	}
	return s.wallet, nil
}

// Connected reports whether Disconnect has not been called yet.
func (s *Session) Connected() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return !s.disconnected
}

// Disconnect ends the session.  Calling it more than once is a no-op.
func (s *Session) Disconnect(ctx context.Context) error {
	s.mtx.Lock()
	if s.disconnected {
		s.mtx.Unlock()
		return nil
	}
	s.disconnected = true
	s.mtx.Unlock()

	log.Infof("Disconnecting wallet %v", s.ShortAddress())

	return s.account.Disconnect(ctx)
}
