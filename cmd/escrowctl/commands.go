// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/btcsuite/btcescrow/contract"
	"github.com/btcsuite/btcescrow/escrow"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// command describes an escrowctl subcommand.
type command struct {
	usage   string
	summary string
	minArgs int
	maxArgs int

	// offline commands need neither the contract node nor the wallet.
	offline bool

	// journalOnly commands read the local journal only.
	journalOnly bool

	handler func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]*command{
	"create": {
		usage:   "<price BTC> <blocks>",
		summary: "Open an order selling a service",
		minArgs: 2, maxArgs: 2,
		handler: createOrder,
	},
	"accept": {
		usage:   "<order id>",
		summary: "Accept an order as buyer, locking its price",
		minArgs: 1, maxArgs: 1,
		handler: orderCall((*escrow.Client).AcceptOrder),
	},
	"complete": {
		usage:   "<order id>",
		summary: "Confirm delivery, releasing the locked funds to the seller",
		minArgs: 1, maxArgs: 1,
		handler: orderCall((*escrow.Client).CompleteOrder),
	},
	"cancel": {
		usage:   "<order id>",
		summary: "Withdraw an order that was not accepted",
		minArgs: 1, maxArgs: 1,
		handler: orderCall((*escrow.Client).CancelOrder),
	},
	"refund": {
		usage:   "<order id>",
		summary: "Return the locked funds of an expired order to the buyer",
		minArgs: 1, maxArgs: 1,
		handler: orderCall((*escrow.Client).RefundOrder),
	},
	"order": {
		usage:   "<order id>",
		summary: "Show an order",
		minArgs: 1, maxArgs: 1,
		handler: showOrder,
	},
	"count": {
		summary: "Show the number of orders ever created",
		handler: showCount,
	},
	"status": {
		usage:   "[limit]",
		summary: "Show the order count and the newest orders",
		minArgs: 0, maxArgs: 1,
		handler: showStatus,
	},
	"whoami": {
		summary: "Show the connected wallet",
		handler: showSession,
	},
	"history": {
		summary:     "List contract calls recorded in the local journal",
		journalOnly: true,
		handler:     showHistory,
	},
	"selector": {
		usage:   "<method> [method...]",
		summary: "Print the selectors of contract methods",
		minArgs: 1, maxArgs: 64,
		offline: true,
		handler: showSelectors,
	},
}

// commandUsage lists the commands for help output.
func commandUsage() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Commands:\n")
	tw := tabwriter.NewWriter(&b, 0, 8, 2, ' ', 0)
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(tw, "  %s %s\t%s\n", name, cmd.usage, cmd.summary)
	}
	tw.Flush()
	return b.String()
}

func parseOrderID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid order id %q", s)
	}
	if id == 0 {
		return 0, fmt.Errorf("order ids start at 1")
	}
	return id, nil
}

// printEvent reports submission progress on standard output.
func printEvent(e escrow.Event) {
	if e.Stage == escrow.Failed {
		fmt.Printf("[%s] %v\n", e.Stage, e.Err)
		return
	}
	fmt.Printf("[%s] %s\n", e.Stage, e.Message)
}

func printReceipt(w io.Writer, r *escrow.Receipt) {
	fmt.Fprintf(w, "txid:   %v\n", r.TxID)
	fmt.Fprintf(w, "method: %s\n", r.Method)
	fmt.Fprintf(w, "fee:    %v\n", r.Fee)
	fmt.Fprintf(w, "change: %v\n", r.Change)
}

func createOrder(ctx context.Context, a *app, args []string) error {
	price, err := contract.ParsePrice(args[0])
	if err != nil {
		return err
	}
	blocks, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid block count %q", args[1])
	}

	receipt, err := a.client.CreateOrder(ctx, price, blocks, printEvent)
	if err != nil {
		return err
	}
	printReceipt(os.Stdout, receipt)
	return nil
}

type orderCallFunc func(c *escrow.Client, ctx context.Context, id uint64,
	notify escrow.Notifier) (*escrow.Receipt, error)

func orderCall(call orderCallFunc) func(context.Context, *app,
	[]string) error {

	return func(ctx context.Context, a *app, args []string) error {
		id, err := parseOrderID(args[0])
		if err != nil {
			return err
		}
		receipt, err := call(a.client, ctx, id, printEvent)
		if err != nil {
			return err
		}
		printReceipt(os.Stdout, receipt)
		return nil
	}
}

// bestHeight returns the node tip when a node wallet is connected.
func (a *app) bestHeight(ctx context.Context) fn.Option[uint64] {
	if a.node == nil {
		return fn.None[uint64]()
	}
	height, err := a.node.BestHeight(ctx)
	if err != nil {
		log.Warnf("Unable to fetch best height: %v", err)
		return fn.None[uint64]()
	}
	return fn.Some(height)
}

func printOrder(w io.Writer, a *app, o *contract.Order,
	height fn.Option[uint64]) {

	fmt.Fprintf(w, "order %d\n", o.ID)
	fmt.Fprintf(w, "  state:    %v\n", o.State)
	fmt.Fprintf(w, "  seller:   %v\n", o.Seller)
	if o.IsAccepted() {
		fmt.Fprintf(w, "  buyer:    %v\n", o.Buyer)
	}
	fmt.Fprintf(w, "  price:    %s BTC\n", contract.FormatPrice(o.Price))
	fmt.Fprintf(w, "  locked:   %s BTC\n", contract.FormatPrice(o.Locked))
	fmt.Fprintf(w, "  deadline: %d\n", o.Deadline)
	height.WhenSome(func(h uint64) {
		fmt.Fprintf(w, "  expired:  %v\n", o.Expired(h))
	})
	if a.session != nil {
		fmt.Fprintf(w, "  role:     %v\n", a.client.Role(o))
	}
}

func showOrder(ctx context.Context, a *app, args []string) error {
	id, err := parseOrderID(args[0])
	if err != nil {
		return err
	}
	order, err := a.client.Order(ctx, id)
	if err != nil {
		return err
	}
	o, err := order.UnwrapOrErr(fmt.Errorf("order %d not found", id))
	if err != nil {
		return err
	}
	printOrder(os.Stdout, a, &o, a.bestHeight(ctx))
	return nil
}

func showCount(ctx context.Context, a *app, _ []string) error {
	count, err := a.client.OrderCount(ctx)
	if err != nil {
		return err
	}
	fmt.Println(count)
	return nil
}

func parseStatusLimit(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit %q", s)
	}
	if n > escrow.MaxStatusLimit {
		return 0, fmt.Errorf("limit %d exceeds the maximum of %d", n,
			escrow.MaxStatusLimit)
	}
	return n, nil
}

func showStatus(ctx context.Context, a *app, args []string) error {
	limit := defaultStatusLimit
	if len(args) == 1 {
		n, err := parseStatusLimit(args[0])
		if err != nil {
			return err
		}
		limit = n
	}

	status, err := a.client.Status(ctx, limit)
	if err != nil {
		return err
	}
	fmt.Printf("%d orders\n", status.Count)
	height := a.bestHeight(ctx)
	for i := range status.Recent {
		printOrder(os.Stdout, a, &status.Recent[i], height)
	}
	return nil
}

func showSession(_ context.Context, a *app, _ []string) error {
	if a.session == nil {
		return fmt.Errorf("no wallet configured, use --wif or --pubkey")
	}
	mode := "full"
	if a.session.ReadOnly() {
		mode = "read-only"
	}
	fmt.Printf("address:    %s (%s)\n", a.session.Address(),
		a.session.ShortAddress())
	fmt.Printf("public key: %s\n", a.session.PublicKey())
	fmt.Printf("mode:       %s\n", mode)
	return nil
}

func showHistory(_ context.Context, a *app, _ []string) error {
	receipts, err := a.journal.Receipts()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tMETHOD\tTXID\tFEE")
	for _, r := range receipts {
		fmt.Fprintf(tw, "%s\t%s\t%v\t%v\n",
			r.Time.UTC().Format("2006-01-02 15:04:05"), r.Method,
			r.TxID, r.Fee)
	}
	return tw.Flush()
}

func showSelectors(_ context.Context, _ *app, args []string) error {
	for _, method := range args {
		fmt.Printf("%s %s\n", contract.DeriveSelector(method), method)
	}
	return nil
}
