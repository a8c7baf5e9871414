// Copyright (c) 2016-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txauthor provides transaction creation code for contract calls.
package txauthor

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcescrow/wallet/txrules"
	"github.com/btcsuite/btcescrow/wallet/txsizes"
)

// MaxDataCarrierPayload is the largest payload a data carrier output can
// hold.  The payload length is encoded in a single byte.
const MaxDataCarrierPayload = 255

// Output positions of a funding transaction.
const (
	// DataOutputIndex is the index of the zero value data carrier output.
	DataOutputIndex = 0

	// ChangeOutputIndex is the index of the change output paying back to
	// the spent coin's script.
	ChangeOutputIndex = 1
)

// ErrPayloadTooLarge is returned when the contract address and calldata do
// not fit in a data carrier output.
var ErrPayloadTooLarge = errors.New("contract call payload too large")

// CallPayload returns the data embedded in a funding transaction: the UTF-8
// bytes of the contract address followed by the calldata.
func CallPayload(contractAddr string, calldata []byte) []byte {
	payload := make([]byte, 0, len(contractAddr)+len(calldata))
	payload = append(payload, contractAddr...)
	return append(payload, calldata...)
}

// DataCarrierScript wraps payload in an unspendable script:
//
//	OP_RETURN <1 byte length> <payload>
func DataCarrierScript(payload []byte) ([]byte, error) {
	if len(payload) > MaxDataCarrierPayload {
		return nil, fmt.Errorf("%w: %d bytes, limit %d",
			ErrPayloadTooLarge, len(payload), MaxDataCarrierPayload)
	}

	script := make([]byte, 0, 2+len(payload))
	script = append(script, txscript.OP_RETURN, byte(len(payload)))
	return append(script, payload...), nil
}

// AuthoredTx holds the state of a newly-created funding transaction.
type AuthoredTx struct {
	Tx              *wire.MsgTx
	PrevScripts     [][]byte
	PrevInputValues []btcutil.Amount
	TotalInput      btcutil.Amount
	Fee             btcutil.Amount
	ChangeIndex     int
}

// NewFundingTx creates an unsigned transaction carrying a contract call.  It
// spends coin as its only input and has exactly two outputs: the data
// carrier holding contractAddr and calldata, followed by the change paying
// coin's value minus the policy fee back to coin's own script.
//
// Nothing is returned when the payload does not fit a data carrier output,
// when the change would be dust, or when an output fails the standard output
// checks at the default relay fee.
func NewFundingTx(coin Coin, contractAddr string, calldata []byte,
	policy txrules.FeePolicy) (*AuthoredTx, error) {

	dataScript, err := DataCarrierScript(
		CallPayload(contractAddr, calldata),
	)
	if err != nil {
		return nil, err
	}

	change, err := policy.Change(coin.Amount)
	if err != nil {
		return nil, &InsufficientBalanceError{
			Available: coin.Amount,
			Fee:       policy.Fee,
			DustLimit: policy.DustLimit,
		}
	}

	changeScript := append([]byte(nil), coin.PkScript...)

	unsignedTransaction := &wire.MsgTx{
		Version: wire.TxVersion,
		TxIn: []*wire.TxIn{
			wire.NewTxIn(&coin.OutPoint, nil, nil),
		},
		TxOut: []*wire.TxOut{
			wire.NewTxOut(0, dataScript),
			wire.NewTxOut(int64(change), changeScript),
		},
		LockTime: 0,
	}
	for i, txOut := range unsignedTransaction.TxOut {
		err := txrules.CheckOutput(txOut, txrules.DefaultRelayFeePerKb)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
	}

	tx := &AuthoredTx{
		Tx:              unsignedTransaction,
		PrevScripts:     [][]byte{changeScript},
		PrevInputValues: []btcutil.Amount{coin.Amount},
		TotalInput:      coin.Amount,
		Fee:             policy.Fee,
		ChangeIndex:     ChangeOutputIndex,
	}

	log.Debugf("Authored funding tx %v: payload %d bytes, change %v, "+
		"fee %v (~%d vbytes)", unsignedTransaction.TxHash(),
		len(dataScript)-2, change, policy.Fee, tx.EstimateVirtualSize())

	return tx, nil
}

// Change returns the value of the change output.
func (tx *AuthoredTx) Change() btcutil.Amount {
	return btcutil.Amount(tx.Tx.TxOut[tx.ChangeIndex].Value)
}

// EstimateVirtualSize returns the worst case virtual size of the transaction
// once signed.
func (tx *AuthoredTx) EstimateVirtualSize() int {
	return txsizes.EstimateVirtualSize(tx.PrevScripts[0], tx.Tx.TxOut)
}

// Packet wraps the transaction in a PSBT for an external signer.  Each input
// carries its previous output so signers using value-committing signature
// hashes can sign it.  Taproot inputs additionally carry the witness program
// as internal key and request the default sighash.
func (tx *AuthoredTx) Packet() (*psbt.Packet, error) {
	packet, err := psbt.NewFromUnsignedTx(tx.Tx.Copy())
	if err != nil {
		return nil, err
	}

	for i := range packet.Inputs {
		decorateInput(
			&packet.Inputs[i], tx.PrevScripts[i],
			tx.PrevInputValues[i],
		)
	}

	return packet, nil
}

// decorateInput adds the previous output information a signer needs to the
// PSBT input spending pkScript.
func decorateInput(in *psbt.PInput, pkScript []byte, value btcutil.Amount) {
	in.WitnessUtxo = wire.NewTxOut(int64(value), pkScript)

	if txscript.IsPayToTaproot(pkScript) {
		in.SighashType = txscript.SigHashDefault
		// Carries the output key, not a pre-tweak internal key.
		in.TaprootInternalKey = append([]byte(nil), pkScript[2:]...)
		return
	}

	in.SighashType = txscript.SigHashAll
}

// SecretsSource provides private keys and redeem scripts necessary for
// constructing transaction input signatures.  Secrets are looked up by the
// corresponding Address for the previous output script.  Addresses for lookup
// are created using the source's blockchain parameters and means a single
// SecretsSource can only manage secrets for a single chain.
type SecretsSource interface {
	txscript.KeyDB
	txscript.ScriptDB
	ChainParams() *chaincfg.Params
}

// SignPacket signs every input of packet with keys from secrets and stores
// the results as final scripts, leaving the packet ready for extraction.
// Every input must carry its witness UTXO.
func SignPacket(packet *psbt.Packet, secrets SecretsSource) error {
	tx := packet.UnsignedTx.Copy()

	prevScripts := make([][]byte, len(tx.TxIn))
	inputValues := make([]btcutil.Amount, len(tx.TxIn))
	for i, in := range packet.Inputs {
		if in.WitnessUtxo == nil {
			return fmt.Errorf("input %d is missing its previous "+
				"output", i)
		}
		prevScripts[i] = in.WitnessUtxo.PkScript
		inputValues[i] = btcutil.Amount(in.WitnessUtxo.Value)
	}

	err := AddAllInputScripts(tx, prevScripts, inputValues, secrets)
	if err != nil {
		return err
	}

	for i, txIn := range tx.TxIn {
		in := &packet.Inputs[i]
		if len(txIn.SignatureScript) > 0 {
			in.FinalScriptSig = txIn.SignatureScript
		}
		if len(txIn.Witness) > 0 {
			var buf bytes.Buffer
			if err := writeWitness(&buf, txIn.Witness); err != nil {
				return err
			}
			in.FinalScriptWitness = buf.Bytes()

			if txscript.IsPayToTaproot(prevScripts[i]) {
				in.TaprootKeySpendSig = txIn.Witness[0]
			}
		}
	}

	return nil
}

// writeWitness serializes a witness stack the way PSBT final script
// witnesses are stored: an item count followed by length prefixed items.
func writeWitness(buf *bytes.Buffer, witness wire.TxWitness) error {
	if err := wire.WriteVarInt(buf, 0, uint64(len(witness))); err != nil {
		return err
	}
	for _, item := range witness {
		if err := wire.WriteVarBytes(buf, 0, item); err != nil {
			return err
		}
	}
	return nil
}

// AddAllInputScripts modifies transaction a transaction by adding inputs
// scripts for each input.  Previous output scripts being redeemed by each input
// are passed in prevPkScripts and the slice length must match the number of
// inputs.  Private keys and redeem scripts are looked up using a SecretsSource
// based on the previous output script.
func AddAllInputScripts(tx *wire.MsgTx, prevPkScripts [][]byte,
	inputValues []btcutil.Amount, secrets SecretsSource) error {

	inputFetcher, err := TXPrevOutFetcher(tx, prevPkScripts, inputValues)
	if err != nil {
		return err
	}

	inputs := tx.TxIn
	hashCache := txscript.NewTxSigHashes(tx, inputFetcher)
	chainParams := secrets.ChainParams()

	for i := range inputs {
		pkScript := prevPkScripts[i]

		switch {
		// If this is a p2sh output, who's script hash pre-image is a
		// witness program, then we'll need to use a modified signing
		// function which generates both the sigScript, and the witness
		// script.
		case txscript.IsPayToScriptHash(pkScript):
			err = spendNestedWitnessPubKeyHash(
				inputs[i], pkScript, int64(inputValues[i]),
				chainParams, secrets, tx, hashCache, i,
			)

		case txscript.IsPayToWitnessPubKeyHash(pkScript):
			err = spendWitnessKeyHash(
				inputs[i], pkScript, int64(inputValues[i]),
				chainParams, secrets, tx, hashCache, i,
			)

		case txscript.IsPayToTaproot(pkScript):
			err = spendTaprootKey(
				inputs[i], pkScript, int64(inputValues[i]),
				chainParams, secrets, tx, hashCache, i,
			)

		default:
			var script []byte
			script, err = txscript.SignTxOutput(chainParams, tx, i,
				pkScript, txscript.SigHashAll, secrets, secrets,
				inputs[i].SignatureScript)
			inputs[i].SignatureScript = script
		}
		if err != nil {
			return fmt.Errorf("unable to sign input %d: %w", i, err)
		}
	}

	return nil
}

// spendWitnessKeyHash generates, and sets a valid witness for spending the
// passed pkScript with the specified input amount. The input amount *must*
// correspond to the output value of the previous pkScript, or else verification
// will fail since the new sighash digest algorithm defined in BIP0143 includes
// the input value in the sighash.
func spendWitnessKeyHash(txIn *wire.TxIn, pkScript []byte,
	inputValue int64, chainParams *chaincfg.Params, secrets SecretsSource,
	tx *wire.MsgTx, hashCache *txscript.TxSigHashes, idx int) error {

	witnessProgram, privKey, compressed, err := witnessKeyHashProgram(
		pkScript, chainParams, secrets,
	)
	if err != nil {
		return err
	}

	witnessScript, err := txscript.WitnessSignature(tx, hashCache, idx,
		inputValue, witnessProgram, txscript.SigHashAll, privKey,
		compressed)
	if err != nil {
		return err
	}

	txIn.Witness = witnessScript

	return nil
}

// spendNestedWitnessPubKeyHash generates both a sigScript, and valid witness
// for spending the passed pkScript with the specified input amount. The
// generated sigScript is the version 0 p2wkh witness program corresponding to
// the queried key. The witness stack is identical to that of one which spends
// a regular p2wkh output.
func spendNestedWitnessPubKeyHash(txIn *wire.TxIn, pkScript []byte,
	inputValue int64, chainParams *chaincfg.Params, secrets SecretsSource,
	tx *wire.MsgTx, hashCache *txscript.TxSigHashes, idx int) error {

	witnessProgram, privKey, compressed, err := witnessKeyHashProgram(
		pkScript, chainParams, secrets,
	)
	if err != nil {
		return err
	}

	// The sigScript will contain only a single push of the p2wkh witness
	// program corresponding to the matching public key of this address.
	bldr := txscript.NewScriptBuilder()
	bldr.AddData(witnessProgram)
	sigScript, err := bldr.Script()
	if err != nil {
		return err
	}
	txIn.SignatureScript = sigScript

	witnessScript, err := txscript.WitnessSignature(tx, hashCache, idx,
		inputValue, witnessProgram, txscript.SigHashAll, privKey,
		compressed)
	if err != nil {
		return err
	}

	txIn.Witness = witnessScript

	return nil
}

// witnessKeyHashProgram looks up the key for a (nested) p2wkh pkScript and
// returns the v0 witness program paying to it, respecting the compression
// type of the key.
func witnessKeyHashProgram(pkScript []byte, chainParams *chaincfg.Params,
	secrets SecretsSource) ([]byte, *btcec.PrivateKey, bool, error) {

	_, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript,
		chainParams)
	if err != nil {
		return nil, nil, false, err
	}
	if len(addrs) == 0 {
		return nil, nil, false, errors.New("no address in script")
	}
	privKey, compressed, err := secrets.GetKey(addrs[0])
	if err != nil {
		return nil, nil, false, err
	}
	pubKey := privKey.PubKey()

	var pubKeyHash []byte
	if compressed {
		pubKeyHash = btcutil.Hash160(pubKey.SerializeCompressed())
	} else {
		pubKeyHash = btcutil.Hash160(pubKey.SerializeUncompressed())
	}
	p2wkhAddr, err := btcutil.NewAddressWitnessPubKeyHash(
		pubKeyHash, chainParams,
	)
	if err != nil {
		return nil, nil, false, err
	}

	witnessProgram, err := txscript.PayToAddrScript(p2wkhAddr)
	if err != nil {
		return nil, nil, false, err
	}

	return witnessProgram, privKey, compressed, nil
}

// spendTaprootKey generates, and sets a valid witness for spending the passed
// pkScript with the specified input amount. The input amount *must*
// correspond to the output value of the previous pkScript, or else verification
// will fail since the new sighash digest algorithm defined in BIP0341 includes
// the input value in the sighash.
func spendTaprootKey(txIn *wire.TxIn, pkScript []byte,
	inputValue int64, chainParams *chaincfg.Params, secrets SecretsSource,
	tx *wire.MsgTx, hashCache *txscript.TxSigHashes, idx int) error {

	// First obtain the key pair associated with this p2tr address. If the
	// pkScript is incorrect or derived from a different internal key or
	// with a script root, we simply won't find a corresponding private key
	// here.
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript, chainParams)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		return errors.New("no address in script")
	}
	privKey, _, err := secrets.GetKey(addrs[0])
	if err != nil {
		return err
	}

	witnessScript, err := txscript.TaprootWitnessSignature(
		tx, hashCache, idx, inputValue, pkScript,
		txscript.SigHashDefault, privKey,
	)
	if err != nil {
		return err
	}

	txIn.Witness = witnessScript

	return nil
}

// TXPrevOutFetcher creates a txscript.PrevOutFetcher from a given slice of
// previous pk scripts and input values.
func TXPrevOutFetcher(tx *wire.MsgTx, prevPkScripts [][]byte,
	inputValues []btcutil.Amount) (*txscript.MultiPrevOutFetcher, error) {

	if len(tx.TxIn) != len(prevPkScripts) {
		return nil, errors.New("tx.TxIn and prevPkScripts slices " +
			"must have equal length")
	}
	if len(tx.TxIn) != len(inputValues) {
		return nil, errors.New("tx.TxIn and inputValues slices " +
			"must have equal length")
	}

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for idx, txin := range tx.TxIn {
		fetcher.AddPrevOut(txin.PreviousOutPoint, &wire.TxOut{
			Value:    int64(inputValues[idx]),
			PkScript: prevPkScripts[idx],
		})
	}

	return fetcher, nil
}
