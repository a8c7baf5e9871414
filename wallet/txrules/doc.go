// Copyright (c) 2015-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txrules provides functions that help establish whether or not a
transaction abides by non-consensus rules for things like the daemon's relay
policy and the flat fee charged to contract calls.

# Dust and Fee Per KB Calculation

Please refer to mempool/policy.go in btcd for more information about the
importance of these functions.

# Flat fee policy

Contract call transactions spend exactly one input and pay a fixed fee:

	change = input - fee

The transaction is only built when change is strictly greater than the dust
limit (546 satoshis by default, the P2PKH dust threshold at the default relay
fee).
*/
package txrules
