// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
)

// ErrRPC is matched by every error object returned by the contract node.
var ErrRPC = errors.New("contract rpc error")

// RPCError is an error object returned by the contract node.  The raw
// payload is kept verbatim since nodes do not agree on its shape.
type RPCError struct {
	// Method is the RPC method that failed.
	Method string

	// Payload is the raw JSON error object.
	Payload json.RawMessage

	// Code and Message are filled in when the payload is a standard
	// JSON-RPC error object.
	Code    btcjson.RPCErrorCode
	Message string
}

// newRPCError wraps a raw error object returned for method.
func newRPCError(method string, payload json.RawMessage) *RPCError {
	e := &RPCError{
		Method:  method,
		Payload: append(json.RawMessage(nil), payload...),
	}

	var std btcjson.RPCError
	if err := json.Unmarshal(payload, &std); err == nil {
		e.Code = std.Code
		e.Message = std.Message
	}
	return e
}

// Error returns the remote message when there is one, the raw payload
// otherwise.
func (e *RPCError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (code %d)", e.Method, e.Message,
			e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Method, e.Payload)
}

// Is allows errors.Is to match ErrRPC.
func (e *RPCError) Is(target error) bool {
	return target == ErrRPC
}
