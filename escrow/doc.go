// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package escrow drives the escrow contract on behalf of a user.

State changing calls (createOrder, acceptOrder, completeOrder, cancelOrder,
refundOrder) are submitted by a Submitter, which walks each call through the
stages

	PreparingCalldata -> SelectingCoins -> Assembling ->
	AwaitingSignature -> Broadcasting -> Done

reporting every transition as an Event.  The first failing stage moves the
call to Failed; nothing is retried and no coin is reserved.

Read-only calls (getOrder, orderCount) go straight to the contract node
through a chain.Caller.  Broadcast calls may be recorded in a Journal kept in
a walletdb database.
*/
package escrow
