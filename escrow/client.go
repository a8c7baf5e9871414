// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package escrow

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcescrow/chain"
	"github.com/btcsuite/btcescrow/contract"
	"github.com/btcsuite/btcescrow/wallet"
	"github.com/btcsuite/btcescrow/wallet/txrules"
	"github.com/holiman/uint256"
	"github.com/lightningnetwork/lnd/fn/v2"
	"golang.org/x/sync/errgroup"
)

const (
	// maxConcurrentReads bounds the order lookups a Status call runs at
	// once.
	maxConcurrentReads = 4

	// MaxStatusLimit is the most orders a Status call looks up.
	MaxStatusLimit = 1000
)

// Config holds the collaborators of a Client.
type Config struct {
	// Contract is the address of the escrow contract.
	Contract string

	// Caller executes read-only calls.
	Caller chain.Caller

	// Session is the connected wallet.  It may be nil, in which case
	// only read-only calls are possible.
	Session *wallet.Session

	// Selectors caches method selectors.  A nil cache is replaced by a
	// fresh one.
	Selectors *contract.SelectorCache

	// Policy is the fee policy of funding transactions.
	Policy txrules.FeePolicy

	// Recorder, when set, stores receipts of broadcast calls.
	Recorder Recorder
}

// Client is the escrow contract as seen by a user: state changing calls
// go through the wallet session, reads go through the contract node.
type Client struct {
	encoder   *contract.Encoder
	caller    chain.Caller
	session   *wallet.Session
	submitter *Submitter
}

// New returns a client built from cfg.
func New(cfg *Config) (*Client, error) {
	if cfg.Caller == nil {
		return nil, errors.New("no contract node configured")
	}

	submitter, err := NewSubmitter(cfg.Contract, cfg.Policy, cfg.Recorder)
	if err != nil {
		return nil, err
	}

	selectors := cfg.Selectors
	if selectors == nil {
		selectors = contract.NewSelectorCache()
	}

	return &Client{
		encoder:   contract.NewEncoder(selectors),
		caller:    cfg.Caller,
		session:   cfg.Session,
		submitter: submitter,
	}, nil
}

// Encoder returns the calldata encoder used by the client.
func (c *Client) Encoder() *contract.Encoder {
	return c.encoder
}

func (c *Client) wallet() (wallet.Wallet, error) {
	if c.session == nil {
		return nil, wallet.ErrWalletUnavailable
	}
	return c.session.Wallet()
}

// submit runs a state changing call.  Wallet availability is checked
// before anything is encoded.
func (c *Client) submit(ctx context.Context, method string,
	encode EncodeFunc, notify Notifier) (*Receipt, error) {

	w, err := c.wallet()
	if err != nil {
		return nil, err
	}
	return c.submitter.Submit(ctx, w, method, encode, notify)
}

// CreateOrder opens an order selling a service for price, to be delivered
// within blocks blocks of acceptance.
func (c *Client) CreateOrder(ctx context.Context, price *uint256.Int,
	blocks uint64, notify Notifier) (*Receipt, error) {

	return c.submit(ctx, contract.MethodCreateOrder,
		func() (contract.Calldata, error) {
			return c.encoder.CreateOrder(price, blocks)
		}, notify)
}

// AcceptOrder accepts order id as buyer, locking its price.
func (c *Client) AcceptOrder(ctx context.Context, id uint64,
	notify Notifier) (*Receipt, error) {

	return c.submit(ctx, contract.MethodAcceptOrder,
		func() (contract.Calldata, error) {
			return c.encoder.AcceptOrder(id)
		}, notify)
}

// CompleteOrder confirms delivery of order id, releasing the locked funds
// to the seller.
func (c *Client) CompleteOrder(ctx context.Context, id uint64,
	notify Notifier) (*Receipt, error) {

	return c.submit(ctx, contract.MethodCompleteOrder,
		func() (contract.Calldata, error) {
			return c.encoder.CompleteOrder(id)
		}, notify)
}

// CancelOrder withdraws order id before it is accepted.
func (c *Client) CancelOrder(ctx context.Context, id uint64,
	notify Notifier) (*Receipt, error) {

	return c.submit(ctx, contract.MethodCancelOrder,
		func() (contract.Calldata, error) {
			return c.encoder.CancelOrder(id)
		}, notify)
}

// RefundOrder returns the locked funds of an expired order id to the
// buyer.
func (c *Client) RefundOrder(ctx context.Context, id uint64,
	notify Notifier) (*Receipt, error) {

	return c.submit(ctx, contract.MethodRefundOrder,
		func() (contract.Calldata, error) {
			return c.encoder.RefundOrder(id)
		}, notify)
}

// Order looks order id up.  None is returned when the contract has no
// decodable record for it; errors are reserved for encoding and transport
// failures.
func (c *Client) Order(ctx context.Context,
	id uint64) (fn.Option[contract.Order], error) {

	calldata, err := c.encoder.GetOrder(id)
	if err != nil {
		return fn.None[contract.Order](), err
	}

	result, err := c.caller.Call(ctx, c.submitter.Contract(), calldata)
	if err != nil {
		return fn.None[contract.Order](), err
	}

	return contract.OrderFromResult(result), nil
}

// OrderCount returns the number of orders ever created.  An empty result
// counts as zero.
func (c *Client) OrderCount(ctx context.Context) (uint64, error) {
	calldata, err := c.encoder.OrderCount()
	if err != nil {
		return 0, err
	}

	result, err := c.caller.Call(ctx, c.submitter.Contract(), calldata)
	if err != nil {
		return 0, err
	}
	if result == nil {
		return 0, nil
	}

	count, err := contract.DecodeCount(*result)
	switch {
	case errors.Is(err, contract.ErrEmptyResponse):
		return 0, nil
	case err != nil:
		return 0, err
	}
	return count, nil
}

// Status is a snapshot of the contract.
type Status struct {
	// Count is the number of orders ever created.
	Count uint64

	// Recent holds the newest orders, newest first.  Orders the
	// contract returned no record for are left out.
	Recent []contract.Order
}

// Status returns the order count and the newest limit orders.  Orders are
// numbered from one, so the newest order has the id Count.  A negative limit,
// or one above MaxStatusLimit, asks for MaxStatusLimit orders.  The lookups
// run concurrently; the first failure cancels the rest.
func (c *Client) Status(ctx context.Context, limit int) (*Status, error) {
	count, err := c.OrderCount(ctx)
	if err != nil {
		return nil, err
	}

	if limit < 0 || limit > MaxStatusLimit {
		limit = MaxStatusLimit
	}
	n := min(uint64(limit), count)

	orders := make([]fn.Option[contract.Order], n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i := uint64(0); i < n; i++ {
		id := count - i
		g.Go(func() error {
			order, err := c.Order(gctx, id)
			if err != nil {
				return fmt.Errorf("order %d: %w", id, err)
			}
			orders[i] = order
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	status := &Status{Count: count}
	for _, order := range orders {
		order.WhenSome(func(o contract.Order) {
			status.Recent = append(status.Recent, o)
		})
	}

	log.Debugf("Contract has %d orders, fetched %d", count,
		len(status.Recent))

	return status, nil
}

// Role returns the part the connected wallet plays in o.
func (c *Client) Role(o *contract.Order) contract.Role {
	if c.session == nil {
		return contract.RoleNone
	}
	addr, err := contract.ParseAddress(c.session.PublicKey())
	if err != nil {
		return contract.RoleNone
	}
	return o.Role(addr)
}
