// Copyright (c) 2013-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netparams

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

// Params is used to group parameters for various networks such as the main
// network and test networks.
type Params struct {
	*chaincfg.Params

	// NodeRPCPort is the default RPC port of the bitcoin node backing
	// the node wallet.
	NodeRPCPort string

	// ContractRPCURL is the default JSON-RPC endpoint of the contract
	// node.
	ContractRPCURL string
}

// MainNetParams contains parameters specific to the main network
// (wire.MainNet).
var MainNetParams = Params{
	Params:         &chaincfg.MainNetParams,
	NodeRPCPort:    "8332",
	ContractRPCURL: "https://api.opnet.org",
}

// TestNet3Params contains parameters specific to the test network (version
// 3) (wire.TestNet3).
var TestNet3Params = Params{
	Params:         &chaincfg.TestNet3Params,
	NodeRPCPort:    "18332",
	ContractRPCURL: "https://testnet.opnet.org",
}

// RegressionNetParams contains parameters specific to the regression test
// network (wire.TestNet).
var RegressionNetParams = Params{
	Params:         &chaincfg.RegressionNetParams,
	NodeRPCPort:    "18443",
	ContractRPCURL: "https://regtest.opnet.org",
}

// SigNetParams contains parameters specific to the default signet network
// (wire.SigNet).
var SigNetParams = Params{
	Params:         &chaincfg.SigNetParams,
	NodeRPCPort:    "38332",
	ContractRPCURL: "https://signet.opnet.org",
}

// ByName returns the parameters of the network called name, as reported by
// chaincfg.
func ByName(name string) (*Params, error) {
	for _, p := range []*Params{
		&MainNetParams, &TestNet3Params, &RegressionNetParams,
		&SigNetParams,
	} {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown network %q", name)
}
