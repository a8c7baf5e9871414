// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"encoding/hex"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/sync/singleflight"
)

// SelectorSize is the size in bytes of a method selector.
const SelectorSize = 4

// Selector identifies the contract method a calldata payload invokes.
type Selector [SelectorSize]byte

// String returns the selector as a 0x-prefixed hex string.
func (s Selector) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// DeriveSelector computes the selector of a method name without consulting
// any cache.  The selector is the first four bytes of the SHA-256 digest of
// the UTF-8 encoded name.
func DeriveSelector(method string) Selector {
	var sel Selector
	copy(sel[:], chainhash.HashB([]byte(method)))
	return sel
}

// SelectorCache memoizes method selectors by name.  Entries are never
// evicted and, once stored, never change.  It is safe for concurrent use.
type SelectorCache struct {
	entries sync.Map // string -> Selector
	group   singleflight.Group
}

// NewSelectorCache returns an empty selector cache.
func NewSelectorCache() *SelectorCache {
	return &SelectorCache{}
}

// Selector returns the selector for the named method, deriving and caching
// it on first use.  Concurrent first lookups of the same name share a
// single derivation.
func (c *SelectorCache) Selector(method string) (Selector, error) {
	if method == "" {
		return Selector{}, encodingErrorf("empty method name")
	}

	if sel, ok := c.entries.Load(method); ok {
		return sel.(Selector), nil
	}

	v, _, _ := c.group.Do(method, func() (interface{}, error) {
		sel, _ := c.entries.LoadOrStore(method, DeriveSelector(method))
		log.Tracef("Derived selector %v for method %q", sel, method)
		return sel, nil
	})

	return v.(Selector), nil
}

// Len returns the number of cached selectors.
func (c *SelectorCache) Len() int {
	n := 0
	c.entries.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}
