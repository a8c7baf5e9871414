// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// AddressSize is the size of a participant address in an order record.
const AddressSize = 33

// OrderSize is the encoded size of an order record:
//
//   - 8 bytes id
//   - 33 bytes seller
//   - 33 bytes buyer
//   - 32 bytes price
//   - 32 bytes locked amount
//   - 1 byte state
//   - 8 bytes deadline height
//   - 8 bytes accepted-at height
const OrderSize = U64Size + 2*AddressSize + 2*U256Size + 1 + 2*U64Size

// Address is a public-key style participant address as stored by the
// contract.  It is never interpreted here.
type Address [AddressSize]byte

// String returns the hex encoding of the address.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Short returns an abbreviated form of the address suitable for display,
// keeping the first six and last four characters.
func (a Address) Short() string {
	return ShortAddress(a.String())
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == Address{}
}

// ParseAddress parses a hex encoded address, with or without a 0x prefix.
func ParseAddress(s string) (Address, error) {
	var a Address
	b, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %v", s, err)
	}
	if len(b) != AddressSize {
		return a, fmt.Errorf("invalid address %q: want %d bytes, "+
			"got %d", s, AddressSize, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// ShortAddress abbreviates s as abcdef...wxyz.  Strings too short to be
// abbreviated are returned unchanged.
func ShortAddress(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}

// State is the lifecycle state code of an order as kept by the contract.
type State uint8

// Order states.
const (
	StateOpen State = iota
	StateAccepted
	StateCompleted
	StateCancelled
	StateRefunded
)

// String returns the human readable name of the state.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateAccepted:
		return "accepted"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateRefunded:
		return "refunded"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Role is a participant's relation to an order.
type Role uint8

// Roles.
const (
	RoleNone Role = iota
	RoleSeller
	RoleBuyer
)

// String returns the name of the role.
func (r Role) String() string {
	switch r {
	case RoleSeller:
		return "seller"
	case RoleBuyer:
		return "buyer"
	default:
		return "none"
	}
}

// Order mirrors an escrow order record held by the contract.  It is a read
// model only: values are replaced on every query and never persisted.
type Order struct {
	ID         uint64
	Seller     Address
	Buyer      Address
	Price      *uint256.Int
	Locked     *uint256.Int
	State      State
	Deadline   uint64
	AcceptedAt uint64
}

// IsAccepted reports whether a buyer has accepted the order.
func (o *Order) IsAccepted() bool {
	return o.AcceptedAt != 0
}

// Expired reports whether the order deadline lies before height.
func (o *Order) Expired(height uint64) bool {
	return o.Deadline != 0 && height > o.Deadline
}

// Role returns the role addr plays in the order.
func (o *Order) Role(addr Address) Role {
	switch {
	case addr.IsZero():
		return RoleNone
	case addr == o.Seller:
		return RoleSeller
	case addr == o.Buyer:
		return RoleBuyer
	default:
		return RoleNone
	}
}

// EncodeOrder serializes o using the contract's fixed-width record layout.
func EncodeOrder(o *Order) []byte {
	b := make([]byte, OrderSize)
	off := 0

	binary.LittleEndian.PutUint64(b[off:], o.ID)
	off += U64Size
	off += copy(b[off:], o.Seller[:])
	off += copy(b[off:], o.Buyer[:])
	putUint256(b[off:], u256OrZero(o.Price))
	off += U256Size
	putUint256(b[off:], u256OrZero(o.Locked))
	off += U256Size
	b[off] = byte(o.State)
	off++
	binary.LittleEndian.PutUint64(b[off:], o.Deadline)
	off += U64Size
	binary.LittleEndian.PutUint64(b[off:], o.AcceptedAt)

	return b
}

// DecodeOrderBytes decodes a raw order record.  Trailing bytes past the fixed
// record are ignored.
func DecodeOrderBytes(b []byte) (*Order, error) {
	if len(b) < U64Size {
		return nil, undecodableErrorf("response of %d bytes is "+
			"shorter than %d", len(b), U64Size)
	}

	r := recordReader{b: b}
	o := &Order{}
	o.ID = r.readU64()
	r.read(o.Seller[:])
	r.read(o.Buyer[:])
	o.Price = r.readU256()
	o.Locked = r.readU256()
	o.State = State(r.readByte())
	o.Deadline = r.readU64()
	o.AcceptedAt = r.readU64()
	if r.short {
		return nil, undecodableErrorf("response of %d bytes is "+
			"shorter than an order record (%d bytes)", len(b),
			OrderSize)
	}

	return o, nil
}

// DecodeOrder decodes a hex encoded order record, with or without a 0x
// prefix.  An empty result yields ErrEmptyResponse, while short or malformed
// input yields ErrUndecodableResponse.
func DecodeOrder(s string) (*Order, error) {
	b, err := decodeResult(s)
	if err != nil {
		return nil, err
	}
	return DecodeOrderBytes(b)
}

// OrderFromResult interprets a call result as an order.  A nil result and
// every decoding failure map to None, so callers only need to handle "no
// such order".
func OrderFromResult(result *string) fn.Option[Order] {
	if result == nil {
		return fn.None[Order]()
	}
	o, err := DecodeOrder(*result)
	if err != nil {
		log.Debugf("Discarding order response: %v", err)
		return fn.None[Order]()
	}
	return fn.Some(*o)
}

// DecodeCount decodes a u64 count result such as the one returned by
// orderCount.
func DecodeCount(s string) (uint64, error) {
	b, err := decodeResult(s)
	if err != nil {
		return 0, err
	}
	if len(b) < U64Size {
		return 0, undecodableErrorf("response of %d bytes is "+
			"shorter than %d", len(b), U64Size)
	}
	return binary.LittleEndian.Uint64(b), nil
}

func decodeResult(s string) ([]byte, error) {
	s = trimHexPrefix(strings.TrimSpace(s))
	if s == "" {
		return nil, ErrEmptyResponse
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, undecodableErrorf("%v", err)
	}
	return b, nil
}

func trimHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

func u256OrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

// recordReader reads fixed-width fields sequentially.  Once a read runs past
// the end of the buffer all further reads return zero values and short is
// set.
type recordReader struct {
	b     []byte
	off   int
	short bool
}

func (r *recordReader) next(n int) []byte {
	if r.short || r.off+n > len(r.b) {
		r.short = true
		return nil
	}
	p := r.b[r.off : r.off+n]
	r.off += n
	return p
}

func (r *recordReader) read(dst []byte) {
	if p := r.next(len(dst)); p != nil {
		copy(dst, p)
	}
}

func (r *recordReader) readByte() byte {
	if p := r.next(1); p != nil {
		return p[0]
	}
	return 0
}

func (r *recordReader) readU64() uint64 {
	if p := r.next(U64Size); p != nil {
		return binary.LittleEndian.Uint64(p)
	}
	return 0
}

func (r *recordReader) readU256() *uint256.Int {
	if p := r.next(U256Size); p != nil {
		return readUint256(p)
	}
	return new(uint256.Int)
}

// Equal reports whether two orders carry identical field values.
func (o *Order) Equal(other *Order) bool {
	return bytes.Equal(EncodeOrder(o), EncodeOrder(other))
}
