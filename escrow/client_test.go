// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package escrow

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/btcsuite/btcescrow/chain"
	"github.com/btcsuite/btcescrow/contract"
	"github.com/btcsuite/btcescrow/wallet"
	"github.com/btcsuite/btcescrow/wallet/txrules"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// testOrder returns an order record with the given id sold by seller.
func testOrder(id uint64, seller contract.Address) contract.Order {
	return contract.Order{
		ID:       id,
		Seller:   seller,
		Price:    uint256.NewInt(100000 * id),
		Locked:   uint256.NewInt(0),
		State:    contract.StateOpen,
		Deadline: 800000 + id,
	}
}

func orderHex(o contract.Order) *string {
	return strPtr("0x" + hex.EncodeToString(contract.EncodeOrder(&o)))
}

func countHex(n uint64) *string {
	var b [8]byte
	for i := range b {
		b[i] = byte(n >> (8 * i))
	}
	return strPtr("0x" + hex.EncodeToString(b[:]))
}

func callHex(t *testing.T, encode func(*contract.Encoder) (contract.Calldata,
	error)) string {

	t.Helper()

	data, err := encode(contract.NewEncoder(nil))
	require.NoError(t, err)
	return data.Hex()
}

func getOrderHex(t *testing.T, id uint64) string {
	return callHex(t, func(e *contract.Encoder) (contract.Calldata, error) {
		return e.GetOrder(id)
	})
}

func orderCountHex(t *testing.T) string {
	return callHex(t, func(e *contract.Encoder) (contract.Calldata, error) {
		return e.OrderCount()
	})
}

func newTestClient(t *testing.T, caller chain.Caller,
	session *wallet.Session) *Client {

	t.Helper()

	c, err := New(&Config{
		Contract: testContract,
		Caller:   caller,
		Session:  session,
		Policy:   txrules.DefaultFeePolicy(),
	})
	require.NoError(t, err)
	return c
}

func TestClientOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seller := contract.Address{0x02, 0xaa}
	order := testOrder(7, seller)

	caller := &fakeCaller{results: map[string]*string{
		getOrderHex(t, 7): orderHex(order),
		getOrderHex(t, 8): strPtr("0x"),
		getOrderHex(t, 9): strPtr("0x0102"),
	}}
	c := newTestClient(t, caller, nil)

	got, err := c.Order(ctx, 7)
	require.NoError(t, err)
	require.True(t, got.IsSome())
	got.WhenSome(func(o contract.Order) {
		require.True(t, order.Equal(&o))
	})

	// Empty, short and missing records are all reported as no order.
	for _, id := range []uint64{8, 9, 10} {
		got, err := c.Order(ctx, id)
		require.NoError(t, err)
		require.True(t, got.IsNone(), "id %d", id)
	}

	caller.err = &chain.RPCError{Method: chain.CallMethod}
	_, err = c.Order(ctx, 7)
	require.ErrorIs(t, err, chain.ErrRPC)
}

func TestClientOrderCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	caller := &fakeCaller{results: map[string]*string{}}
	c := newTestClient(t, caller, nil)

	count, err := c.OrderCount(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	caller.results[orderCountHex(t)] = strPtr("0x")
	count, err = c.OrderCount(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	caller.results[orderCountHex(t)] = countHex(5)
	count, err = c.OrderCount(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(5), count)

	caller.results[orderCountHex(t)] = strPtr("0x05")
	_, err = c.OrderCount(ctx)
	require.ErrorIs(t, err, contract.ErrUndecodableResponse)
}

func TestClientStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seller := contract.Address{0x03, 0x01}
	results := map[string]*string{orderCountHex(t): countHex(4)}
	for id := uint64(1); id <= 4; id++ {
		results[getOrderHex(t, id)] = orderHex(testOrder(id, seller))
	}
	// Order 3 has no record.
	results[getOrderHex(t, 3)] = nil

	c := newTestClient(t, &fakeCaller{results: results}, nil)

	status, err := c.Status(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(4), status.Count)
	require.Len(t, status.Recent, 2)
	require.Equal(t, uint64(4), status.Recent[0].ID)
	require.Equal(t, uint64(2), status.Recent[1].ID)

	status, err = c.Status(ctx, -1)
	require.NoError(t, err)
	require.Len(t, status.Recent, 3)

	failing := &fakeCaller{results: results}
	c = newTestClient(t, failing, nil)
	failing.err = errors.New("connection refused")
	_, err = c.Status(ctx, 2)
	require.ErrorContains(t, err, "connection refused")
}

func TestClientStatusLimitCapped(t *testing.T) {
	t.Parallel()

	// A node reporting an absurd order count must not size the lookup.
	const count = uint64(1) << 62
	caller := &fakeCaller{results: map[string]*string{
		orderCountHex(t): countHex(count),
	}}
	seller := contract.Address{0x03, 0x01}
	caller.results[getOrderHex(t, count)] = orderHex(
		testOrder(count, seller),
	)
	c := newTestClient(t, caller, nil)

	for _, limit := range []int{-1, MaxStatusLimit + 1, 1 << 40} {
		var status *Status
		require.NotPanics(t, func() {
			var err error
			status, err = c.Status(context.Background(), limit)
			require.NoError(t, err)
		})
		require.Equal(t, count, status.Count)
		require.Len(t, status.Recent, 1)
		require.Equal(t, count, status.Recent[0].ID)
	}

	// One count call plus MaxStatusLimit order lookups per Status call.
	require.Len(t, caller.calls, 3*(1+MaxStatusLimit))
}

func TestClientStatusEmpty(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{results: map[string]*string{}}
	c := newTestClient(t, caller, nil)

	status, err := c.Status(context.Background(), 5)
	require.NoError(t, err)
	require.Zero(t, status.Count)
	require.Empty(t, status.Recent)
	require.Len(t, caller.calls, 1)
}

func TestClientRequiresWallet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newTestClient(t, &fakeCaller{}, nil)

	_, err := c.AcceptOrder(ctx, 1, nil)
	require.ErrorIs(t, err, wallet.ErrWalletUnavailable)

	watch := &mockWallet{}
	readOnly := &readOnlyAccount{watch}
	watch.On("Accounts", mock.Anything).Return([]string{"bcrt1pwatch"}, nil)
	watch.On("PublicKey", mock.Anything).Return("02ab", nil)
	session, err := wallet.Connect(ctx, readOnly)
	require.NoError(t, err)

	c = newTestClient(t, &fakeCaller{}, session)
	_, err = c.CreateOrder(ctx, uint256.NewInt(1), 10, nil)
	require.ErrorIs(t, err, wallet.ErrReadOnly)

	// Nothing reached the wallet beyond the connection handshake.
	watch.AssertNotCalled(t, "Coins", mock.Anything)
}

// readOnlyAccount exposes only the Account part of a wallet.
type readOnlyAccount struct {
	wallet.Account
}

func TestClientCalls(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	enc := contract.NewEncoder(nil)
	price, err := contract.ParsePrice("0.001")
	require.NoError(t, err)

	tests := []struct {
		method string
		call   func(c *Client) (*Receipt, error)
		want   func() (contract.Calldata, error)
	}{{
		method: contract.MethodCreateOrder,
		call: func(c *Client) (*Receipt, error) {
			return c.CreateOrder(ctx, price, 144, nil)
		},
		want: func() (contract.Calldata, error) {
			return enc.CreateOrder(price, 144)
		},
	}, {
		method: contract.MethodAcceptOrder,
		call: func(c *Client) (*Receipt, error) {
			return c.AcceptOrder(ctx, 1, nil)
		},
		want: func() (contract.Calldata, error) {
			return enc.AcceptOrder(1)
		},
	}, {
		method: contract.MethodCompleteOrder,
		call: func(c *Client) (*Receipt, error) {
			return c.CompleteOrder(ctx, 2, nil)
		},
		want: func() (contract.Calldata, error) {
			return enc.CompleteOrder(2)
		},
	}, {
		method: contract.MethodCancelOrder,
		call: func(c *Client) (*Receipt, error) {
			return c.CancelOrder(ctx, 3, nil)
		},
		want: func() (contract.Calldata, error) {
			return enc.CancelOrder(3)
		},
	}, {
		method: contract.MethodRefundOrder,
		call: func(c *Client) (*Receipt, error) {
			return c.RefundOrder(ctx, 4, nil)
		},
		want: func() (contract.Calldata, error) {
			return enc.RefundOrder(4)
		},
	}}

	for _, test := range tests {
		w := newMockWallet(t)
		w.On("Accounts", mock.Anything).Return([]string{"bcrt1p"}, nil)
		w.On("PublicKey", mock.Anything).Return("02ab", nil)
		w.On("Coins", mock.Anything).Return(w.coins(30000), nil)
		w.On("SignPsbt", mock.Anything, mock.Anything).Return(nil)
		w.On("PushPsbt", mock.Anything, mock.Anything).Return(nil)

		session, err := wallet.Connect(ctx, w)
		require.NoError(t, err)
		c := newTestClient(t, &fakeCaller{}, session)

		receipt, err := test.call(c)
		require.NoError(t, err, test.method)
		require.Equal(t, test.method, receipt.Method)

		want, err := test.want()
		require.NoError(t, err)
		require.Equal(t, want, receipt.Calldata,
			fmt.Sprintf("%s calldata", test.method))
	}
}

func TestClientRole(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seller := contract.Address{0x02, 0x11, 0x22}
	order := testOrder(1, seller)

	w := newMockWallet(t)
	w.On("Accounts", mock.Anything).Return([]string{"bcrt1p"}, nil)
	w.On("PublicKey", mock.Anything).Return(seller.String(), nil)
	session, err := wallet.Connect(ctx, w)
	require.NoError(t, err)

	c := newTestClient(t, &fakeCaller{}, session)
	require.Equal(t, contract.RoleSeller, c.Role(&order))

	c = newTestClient(t, &fakeCaller{}, nil)
	require.Equal(t, contract.RoleNone, c.Role(&order))
}
