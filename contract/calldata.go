// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/holiman/uint256"
)

// Field widths of the contract's binary ABI.
const (
	// U64Size is the encoded size of a 64-bit unsigned integer.
	U64Size = 8

	// U256Size is the encoded size of a 256-bit unsigned integer.
	U256Size = 32
)

// Contract method names.
const (
	MethodCreateOrder   = "createOrder"
	MethodAcceptOrder   = "acceptOrder"
	MethodCompleteOrder = "completeOrder"
	MethodCancelOrder   = "cancelOrder"
	MethodRefundOrder   = "refundOrder"
	MethodGetOrder      = "getOrder"
	MethodOrderCount    = "orderCount"
)

// Calldata is an encoded contract call: a selector followed by the method's
// fixed-width arguments.  A Calldata value is never modified after it is
// built.
type Calldata struct {
	b []byte
}

// NewCalldata wraps raw calldata bytes.  The input is copied.
func NewCalldata(b []byte) Calldata {
	return Calldata{b: append([]byte(nil), b...)}
}

// Bytes returns a copy of the encoded calldata.
func (c Calldata) Bytes() []byte {
	return append([]byte(nil), c.b...)
}

// Len returns the encoded length in bytes.
func (c Calldata) Len() int {
	return len(c.b)
}

// Hex returns the calldata as a 0x-prefixed hex string, the form used by the
// node's call RPC.
func (c Calldata) Hex() string {
	return "0x" + hex.EncodeToString(c.b)
}

// Selector returns the method selector the calldata starts with.
func (c Calldata) Selector() Selector {
	var sel Selector
	copy(sel[:], c.b)
	return sel
}

// SelectorSource provides method selectors to an Encoder.
type SelectorSource interface {
	Selector(method string) (Selector, error)
}

// Encoder builds calldata for the escrow contract's methods.
type Encoder struct {
	selectors SelectorSource
}

// NewEncoder returns an encoder resolving selectors through src.  A nil src
// derives selectors on every call without caching.
func NewEncoder(src SelectorSource) *Encoder {
	return &Encoder{selectors: src}
}

func (e *Encoder) selector(method string) (Selector, error) {
	if e.selectors == nil {
		if method == "" {
			return Selector{}, encodingErrorf("empty method name")
		}
		return DeriveSelector(method), nil
	}
	return e.selectors.Selector(method)
}

// PriceAndDuration encodes selector ‖ price (u256 LE) ‖ blocks (u64 LE).
func (e *Encoder) PriceAndDuration(method string, price *uint256.Int,
	blocks uint64) (Calldata, error) {

	if price == nil {
		return Calldata{}, encodingErrorf("missing price")
	}
	sel, err := e.selector(method)
	if err != nil {
		return Calldata{}, err
	}

	b := make([]byte, SelectorSize+U256Size+U64Size)
	copy(b, sel[:])
	putUint256(b[SelectorSize:], price)
	binary.LittleEndian.PutUint64(b[SelectorSize+U256Size:], blocks)

	return Calldata{b: b}, nil
}

// OrderID encodes selector ‖ id (u64 LE).
func (e *Encoder) OrderID(method string, id uint64) (Calldata, error) {
	sel, err := e.selector(method)
	if err != nil {
		return Calldata{}, err
	}

	b := make([]byte, SelectorSize+U64Size)
	copy(b, sel[:])
	binary.LittleEndian.PutUint64(b[SelectorSize:], id)

	return Calldata{b: b}, nil
}

// NoArgs encodes the bare selector of method.
func (e *Encoder) NoArgs(method string) (Calldata, error) {
	sel, err := e.selector(method)
	if err != nil {
		return Calldata{}, err
	}
	return Calldata{b: sel[:]}, nil
}

// CreateOrder encodes a createOrder call listing a service at price base
// units, open for the given number of blocks.
func (e *Encoder) CreateOrder(price *uint256.Int, blocks uint64) (Calldata,
	error) {

	return e.PriceAndDuration(MethodCreateOrder, price, blocks)
}

// AcceptOrder encodes an acceptOrder call.
func (e *Encoder) AcceptOrder(id uint64) (Calldata, error) {
	return e.OrderID(MethodAcceptOrder, id)
}

// CompleteOrder encodes a completeOrder call.
func (e *Encoder) CompleteOrder(id uint64) (Calldata, error) {
	return e.OrderID(MethodCompleteOrder, id)
}

// CancelOrder encodes a cancelOrder call.
func (e *Encoder) CancelOrder(id uint64) (Calldata, error) {
	return e.OrderID(MethodCancelOrder, id)
}

// RefundOrder encodes a refundOrder call.
func (e *Encoder) RefundOrder(id uint64) (Calldata, error) {
	return e.OrderID(MethodRefundOrder, id)
}

// GetOrder encodes a read-only getOrder call.
func (e *Encoder) GetOrder(id uint64) (Calldata, error) {
	return e.OrderID(MethodGetOrder, id)
}

// OrderCount encodes a read-only orderCount call.
func (e *Encoder) OrderCount() (Calldata, error) {
	return e.NoArgs(MethodOrderCount)
}

// putUint256 writes v into b[:32] in little-endian order.
func putUint256(b []byte, v *uint256.Int) {
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(b[i*U64Size:], v[i])
	}
}

// readUint256 reads a little-endian 256-bit integer from b[:32].
func readUint256(b []byte) *uint256.Int {
	var v uint256.Int
	for i := 0; i < 4; i++ {
		v[i] = binary.LittleEndian.Uint64(b[i*U64Size:])
	}
	return &v
}
