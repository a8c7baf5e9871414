// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package contract implements the binary call interface of the escrow contract.

# Selectors

Every call starts with a four byte selector naming the invoked method.  The
selector is the first four bytes of the SHA-256 digest of the method name.
SelectorCache memoizes selectors and is safe to share between concurrent
callers.

# Calldata

Arguments follow the selector in declaration order using fixed-width
little-endian fields: 8 bytes for 64-bit integers and 32 bytes for 256-bit
integers.  Encoder provides one function per method shape.

# Order records

getOrder answers with a 155 byte record:

	id(8) seller(33) buyer(33) price(32) locked(32) state(1) deadline(8) acceptedAt(8)

DecodeOrder distinguishes empty from malformed responses; OrderFromResult
folds both into an absent order.
*/
package contract
