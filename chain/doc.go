// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chain talks to the layer-2 contract node over JSON-RPC 2.0.  Only
// the read-only btc_call method is used; state changing calls travel inside
// funding transactions built by wallet/txauthor.
package chain
