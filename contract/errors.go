// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"errors"
	"fmt"
)

var (
	// ErrEncoding is returned when a call argument can not be represented
	// in the fixed-width field the contract ABI reserves for it.
	ErrEncoding = errors.New("calldata encoding error")

	// ErrUndecodableResponse is returned when a contract response is not
	// valid hex or is too short to hold the expected record.
	ErrUndecodableResponse = errors.New("undecodable contract response")

	// ErrEmptyResponse is returned when the contract answered with a
	// well-formed but empty result.
	ErrEmptyResponse = errors.New("empty contract response")
)

func encodingErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrEncoding, fmt.Sprintf(format, args...))
}

func undecodableErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUndecodableResponse,
		fmt.Sprintf(format, args...))
}
