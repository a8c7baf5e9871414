// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package escrow

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcescrow/contract"
	"github.com/btcsuite/btcescrow/wallet"
	"github.com/btcsuite/btcescrow/wallet/txauthor"
	"github.com/btcsuite/btcescrow/wallet/txrules"
)

// Receipt describes a broadcast contract call.
type Receipt struct {
	// TxID is the hash of the funding transaction.
	TxID chainhash.Hash

	// Contract is the address of the called contract.
	Contract string

	// Method is the called contract method.
	Method string

	// Calldata is the encoded call carried by the transaction.
	Calldata contract.Calldata

	// Coin is the spent output.
	Coin wire.OutPoint

	// Fee and Change are the values paid to miners and back to the
	// spender.
	Fee    btcutil.Amount
	Change btcutil.Amount

	// Time is when the transaction was broadcast.
	Time time.Time
}

// Recorder stores receipts of broadcast calls.
type Recorder interface {
	Record(r *Receipt) error
}

// EncodeFunc produces the calldata of a call.
type EncodeFunc func() (contract.Calldata, error)

// Submitter turns contract calls into funded, signed and broadcast
// transactions.  A Submitter holds no per-call state and may be shared by
// concurrent submissions.
type Submitter struct {
	contractAddr string
	policy       txrules.FeePolicy
	recorder     Recorder
	now          func() time.Time
}

// NewSubmitter returns a submitter calling the contract at contractAddr and
// paying fees under policy.  recorder may be nil.
func NewSubmitter(contractAddr string, policy txrules.FeePolicy,
	recorder Recorder) (*Submitter, error) {

	if contractAddr == "" {
		return nil, fmt.Errorf("no contract address configured")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	return &Submitter{
		contractAddr: contractAddr,
		policy:       policy,
		recorder:     recorder,
		now:          time.Now,
	}, nil
}

// Contract returns the address of the called contract.
func (s *Submitter) Contract() string {
	return s.contractAddr
}

// Policy returns the fee policy of the submitter.
func (s *Submitter) Policy() txrules.FeePolicy {
	return s.policy
}

// submission tracks the stage of a single call.
type submission struct {
	method string
	stage  Stage
	notify Notifier
}

func (s *submission) enter(stage Stage, format string, args ...interface{}) {
	s.stage = stage
	msg := fmt.Sprintf(format, args...)

	log.Debugf("%s: %v: %s", s.method, stage, msg)

	if s.notify != nil {
		s.notify(Event{Stage: stage, Message: msg})
	}
}

func (s *submission) fail(err error) error {
	failed := s.stage
	s.stage = Failed

	log.Errorf("%s failed while %v: %v", s.method, failed, err)

	if s.notify != nil {
		msg := fmt.Sprintf("%s failed while %v", s.method, failed)
		s.notify(Event{Stage: Failed, Message: msg, Err: err})
	}
	return &StageError{Stage: failed, Err: err}
}

// Submit runs a state changing call of method through w.  Each stage
// transition is reported to notify, which may be nil.  The first failing
// stage aborts the call; nothing is retried.
func (s *Submitter) Submit(ctx context.Context, w wallet.Wallet,
	method string, encode EncodeFunc, notify Notifier) (*Receipt, error) {

	sub := &submission{method: method, stage: Idle, notify: notify}

	sub.enter(PreparingCalldata, "encoding %s call", method)
	calldata, err := encode()
	if err != nil {
		return nil, sub.fail(err)
	}

	sub.enter(SelectingCoins, "listing spendable coins")
	coins, err := w.Coins(ctx)
	if err != nil {
		return nil, sub.fail(
			fmt.Errorf("unable to list coins: %w", err),
		)
	}
	coin, err := txauthor.SelectCoin(coins, s.policy)
	if err != nil {
		return nil, sub.fail(err)
	}

	sub.enter(Assembling, "spending %v worth %v", coin.OutPoint,
		coin.Amount)
	authored, err := txauthor.NewFundingTx(
		coin, s.contractAddr, calldata.Bytes(), s.policy,
	)
	if err != nil {
		return nil, sub.fail(err)
	}
	vsize := authored.EstimateVirtualSize()
	if !s.policy.MeetsRelayFee(vsize) {
		log.Warnf("Fee %v for %s transaction of ~%d vbytes is below "+
			"the minimum relay fee of %v", s.policy.Fee, method,
			vsize, txrules.FeeForSerializeSize(
				txrules.DefaultRelayFeePerKb, vsize,
			))
	}
	packet, err := authored.Packet()
	if err != nil {
		return nil, sub.fail(err)
	}

	sub.enter(AwaitingSignature, "waiting for wallet to sign %v",
		authored.Tx.TxHash())
	signed, err := wallet.SignPacket(ctx, w, packet)
	if err != nil {
		return nil, sub.fail(err)
	}

	sub.enter(Broadcasting, "broadcasting transaction")
	txid, err := wallet.PushPacket(ctx, w, signed)
	if err != nil {
		return nil, sub.fail(err)
	}

	receipt := &Receipt{
		TxID:     *txid,
		Contract: s.contractAddr,
		Method:   method,
		Calldata: calldata,
		Coin:     coin.OutPoint,
		Fee:      authored.Fee,
		Change:   authored.Change(),
		Time:     s.now(),
	}

	if s.recorder != nil {
		if err := s.recorder.Record(receipt); err != nil {
			log.Warnf("Unable to record %s transaction %v: %v",
				method, txid, err)
		}
	}

	sub.enter(Done, "transaction %v broadcast", txid)

	return receipt, nil
}
