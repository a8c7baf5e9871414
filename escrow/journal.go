// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package escrow

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcescrow/contract"
	"github.com/btcsuite/btcescrow/internal/cfgutil"
	"github.com/btcsuite/btcwallet/walletdb"
	"github.com/lightningnetwork/lnd/tlv"

	// Register the bolt database driver.
	_ "github.com/btcsuite/btcwallet/walletdb/bdb"
)

const (
	// JournalFilename is the name of the journal database inside the
	// data directory.
	JournalFilename = "submissions.db"

	// journalDBType is the walletdb driver backing the journal.
	journalDBType = "bdb"

	// defaultDBTimeout is how long opening the journal waits for the
	// file lock.
	defaultDBTimeout = 10 * time.Second
)

var (
	// receiptsBucketKey is the top level bucket holding one record per
	// broadcast call, keyed by a big endian sequence number.
	receiptsBucketKey = []byte("escrow-receipts")
)

const (
	typeReceiptTxID      tlv.Type = 1
	typeReceiptContract  tlv.Type = 2
	typeReceiptMethod    tlv.Type = 3
	typeReceiptCalldata  tlv.Type = 4
	typeReceiptCoinHash  tlv.Type = 5
	typeReceiptCoinIndex tlv.Type = 6
	typeReceiptFee       tlv.Type = 7
	typeReceiptChange    tlv.Type = 8
	typeReceiptTime      tlv.Type = 9
)

// Journal is a local record of broadcast contract calls, kept in a walletdb
// database.
type Journal struct {
	db walletdb.DB
}

// A compile-time assertion to ensure that Journal implements the Recorder
// interface.
var _ Recorder = (*Journal)(nil)

// OpenJournal opens the journal in dataDir, creating it when missing.
func OpenJournal(dataDir string) (*Journal, error) {
	dbPath := filepath.Join(dataDir, JournalFilename)

	exists, err := cfgutil.FileExists(dbPath)
	if err != nil {
		return nil, err
	}

	var db walletdb.DB
	if exists {
		db, err = walletdb.Open(
			journalDBType, dbPath, true, defaultDBTimeout,
		)
	} else {
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, err
		}
		db, err = walletdb.Create(
			journalDBType, dbPath, true, defaultDBTimeout,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open journal %v: %w", dbPath,
			err)
	}

	err = walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		_, err := tx.CreateTopLevelBucket(receiptsBucketKey)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	log.Debugf("Opened journal %v", dbPath)

	return &Journal{db: db}, nil
}

// Record appends r to the journal.
func (j *Journal) Record(r *Receipt) error {
	value, err := encodeReceipt(r)
	if err != nil {
		return err
	}

	return walletdb.Update(j.db, func(tx walletdb.ReadWriteTx) error {
		bucket := tx.ReadWriteBucket(receiptsBucketKey)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}

		var key [8]byte
		binary.BigEndian.PutUint64(key[:], seq)
		return bucket.Put(key[:], value)
	})
}

// Receipts returns every recorded receipt, oldest first.
func (j *Journal) Receipts() ([]*Receipt, error) {
	var receipts []*Receipt
	err := walletdb.View(j.db, func(tx walletdb.ReadTx) error {
		bucket := tx.ReadBucket(receiptsBucketKey)
		return bucket.ForEach(func(k, v []byte) error {
			r, err := decodeReceipt(v)
			if err != nil {
				return fmt.Errorf("receipt %x: %w", k, err)
			}
			receipts = append(receipts, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// encodeReceipt serializes r as a TLV stream.
func encodeReceipt(r *Receipt) ([]byte, error) {
	var (
		txid      = [32]byte(r.TxID)
		contractB = []byte(r.Contract)
		method    = []byte(r.Method)
		calldata  = r.Calldata.Bytes()
		coinHash  = [32]byte(r.Coin.Hash)
		coinIndex = r.Coin.Index
		fee       = uint64(r.Fee)
		change    = uint64(r.Change)
		unixTime  = uint64(r.Time.Unix())
	)

	stream, err := tlv.NewStream(
		tlv.MakePrimitiveRecord(typeReceiptTxID, &txid),
		tlv.MakePrimitiveRecord(typeReceiptContract, &contractB),
		tlv.MakePrimitiveRecord(typeReceiptMethod, &method),
		tlv.MakePrimitiveRecord(typeReceiptCalldata, &calldata),
		tlv.MakePrimitiveRecord(typeReceiptCoinHash, &coinHash),
		tlv.MakePrimitiveRecord(typeReceiptCoinIndex, &coinIndex),
		tlv.MakePrimitiveRecord(typeReceiptFee, &fee),
		tlv.MakePrimitiveRecord(typeReceiptChange, &change),
		tlv.MakePrimitiveRecord(typeReceiptTime, &unixTime),
	)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := stream.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeReceipt parses a receipt serialized by encodeReceipt.
func decodeReceipt(b []byte) (*Receipt, error) {
	var (
		txid      [32]byte
		contractB []byte
		method    []byte
		calldata  []byte
		coinHash  [32]byte
		coinIndex uint32
		fee       uint64
		change    uint64
		unixTime  uint64
	)

	stream, err := tlv.NewStream(
		tlv.MakePrimitiveRecord(typeReceiptTxID, &txid),
		tlv.MakePrimitiveRecord(typeReceiptContract, &contractB),
		tlv.MakePrimitiveRecord(typeReceiptMethod, &method),
		tlv.MakePrimitiveRecord(typeReceiptCalldata, &calldata),
		tlv.MakePrimitiveRecord(typeReceiptCoinHash, &coinHash),
		tlv.MakePrimitiveRecord(typeReceiptCoinIndex, &coinIndex),
		tlv.MakePrimitiveRecord(typeReceiptFee, &fee),
		tlv.MakePrimitiveRecord(typeReceiptChange, &change),
		tlv.MakePrimitiveRecord(typeReceiptTime, &unixTime),
	)
	if err != nil {
		return nil, err
	}
	if err := stream.Decode(bytes.NewReader(b)); err != nil {
		return nil, err
	}

	return &Receipt{
		TxID:     chainhash.Hash(txid),
		Contract: string(contractB),
		Method:   string(method),
		Calldata: contract.NewCalldata(calldata),
		Coin: wire.OutPoint{
			Hash:  chainhash.Hash(coinHash),
			Index: coinIndex,
		},
		Fee:    btcutil.Amount(fee),
		Change: btcutil.Amount(change),
		Time:   time.Unix(int64(unixTime), 0),
	}, nil
}
