// Copyright (c) 2015-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package zero contains functions to clear key material from memory.
package zero

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
)

// Bytes sets all bytes in the passed slice to zero.
func Bytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Bytea32 clears the 32-byte array by filling it with the zero value.
func Bytea32(b *[32]byte) {
	*b = [32]byte{}
}

// PrivateKey clears the scalar of key.  The key is unusable afterwards.
func PrivateKey(key *btcec.PrivateKey) {
	if key == nil {
		return
	}
	key.Zero()
}

// WIF clears the private key held by wif.
func WIF(wif *btcutil.WIF) {
	if wif == nil {
		return
	}
	PrivateKey(wif.PrivKey)
}
