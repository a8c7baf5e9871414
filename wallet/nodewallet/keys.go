// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nodewallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcescrow/wallet"
	"github.com/btcsuite/btcescrow/wallet/txauthor"
)

// AddressType is the output type a key pays to.
type AddressType uint8

const (
	// TaprootPubKey is a BIP0086 key-spend taproot output.
	TaprootPubKey AddressType = iota

	// WitnessPubKey is a native p2wkh output.
	WitnessPubKey

	// NestedWitnessPubKey is a p2wkh output nested in p2sh.
	NestedWitnessPubKey

	// PubKeyHash is a legacy p2pkh output.
	PubKeyHash
)

var addressTypeNames = map[AddressType]string{
	TaprootPubKey:       "p2tr",
	WitnessPubKey:       "p2wkh",
	NestedWitnessPubKey: "np2wkh",
	PubKeyHash:          "p2pkh",
}

// String returns the flag name of the address type.
func (t AddressType) String() string {
	if name, ok := addressTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// MarshalFlag satisfies the flags.Marshaler interface.
func (t AddressType) MarshalFlag() (string, error) {
	return t.String(), nil
}

// UnmarshalFlag satisfies the flags.Unmarshaler interface.
func (t *AddressType) UnmarshalFlag(value string) error {
	for typ, name := range addressTypeNames {
		if name == value {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("unknown address type %q", value)
}

// keyStore holds the single wallet key and the addresses it controls.  It
// is the txauthor.SecretsSource used for signing.
type keyStore struct {
	wif    *btcutil.WIF
	pubKey *btcec.PublicKey
	params *chaincfg.Params

	active btcutil.Address

	// addrs maps every encoded address of the key to its type.
	addrs map[string]AddressType

	// nestedProgram is the p2wkh program redeemed by the np2wkh address.
	nestedProgram []byte
}

// A compile-time assertion to ensure that keyStore implements the
// SecretsSource interface.
var _ txauthor.SecretsSource = (*keyStore)(nil)

func newKeyStore(wif *btcutil.WIF, active AddressType,
	params *chaincfg.Params) (*keyStore, error) {

	pubKey := wif.PrivKey.PubKey()
	pubKeyHash := btcutil.Hash160(wif.SerializePubKey())

	p2wkh, err := btcutil.NewAddressWitnessPubKeyHash(pubKeyHash, params)
	if err != nil {
		return nil, err
	}
	program, err := txscript.PayToAddrScript(p2wkh)
	if err != nil {
		return nil, err
	}
	np2wkh, err := btcutil.NewAddressScriptHash(program, params)
	if err != nil {
		return nil, err
	}
	p2pkh, err := btcutil.NewAddressPubKeyHash(pubKeyHash, params)
	if err != nil {
		return nil, err
	}
	p2tr, err := wallet.TaprootAddress(pubKey, params)
	if err != nil {
		return nil, err
	}

	byType := map[AddressType]btcutil.Address{
		TaprootPubKey:       p2tr,
		WitnessPubKey:       p2wkh,
		NestedWitnessPubKey: np2wkh,
		PubKeyHash:          p2pkh,
	}
	activeAddr, ok := byType[active]
	if !ok {
		return nil, fmt.Errorf("unsupported address type %v", active)
	}

	addrs := make(map[string]AddressType, len(byType))
	for typ, addr := range byType {
		addrs[addr.EncodeAddress()] = typ
	}

	return &keyStore{
		wif:           wif,
		pubKey:        pubKey,
		params:        params,
		active:        activeAddr,
		addrs:         addrs,
		nestedProgram: program,
	}, nil
}

// GetKey returns the wallet key when addr is one of its addresses.
func (k *keyStore) GetKey(addr btcutil.Address) (*btcec.PrivateKey, bool,
	error) {

	if _, ok := k.addrs[addr.EncodeAddress()]; !ok {
		return nil, false, fmt.Errorf("address %v is not controlled "+
			"by this wallet", addr)
	}
	return k.wif.PrivKey, k.wif.CompressPubKey, nil
}

// GetScript returns the redeem script of the nested p2wkh address.
func (k *keyStore) GetScript(addr btcutil.Address) ([]byte, error) {
	if k.addrs[addr.EncodeAddress()] != NestedWitnessPubKey {
		return nil, fmt.Errorf("no script known for %v", addr)
	}
	return k.nestedProgram, nil
}

// ChainParams returns the network of the key.
func (k *keyStore) ChainParams() *chaincfg.Params {
	return k.params
}
