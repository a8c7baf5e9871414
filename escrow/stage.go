// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package escrow

import (
	"fmt"
)

// Stage is a step of a contract call submission.
type Stage uint8

// Submission stages, in the order they are entered.  Failed may be entered
// from any stage before Done.
const (
	Idle Stage = iota
	PreparingCalldata
	SelectingCoins
	Assembling
	AwaitingSignature
	Broadcasting
	Done
	Failed
)

var stageNames = [...]string{
	Idle:              "idle",
	PreparingCalldata: "preparing calldata",
	SelectingCoins:    "selecting coins",
	Assembling:        "assembling transaction",
	AwaitingSignature: "awaiting signature",
	Broadcasting:      "broadcasting",
	Done:              "done",
	Failed:            "failed",
}

// String returns a human readable name of the stage.
func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

// Terminal reports whether no transition leaves the stage.
func (s Stage) Terminal() bool {
	return s == Done || s == Failed
}

// Event describes a stage transition of a submission.
type Event struct {
	// Stage is the stage just entered.
	Stage Stage

	// Message is a human readable progress line.
	Message string

	// Err is the error that caused the transition to Failed.
	Err error
}

// Notifier receives the events of a submission, synchronously and in
// order.
type Notifier func(Event)

// StageError is the error returned by a failed submission.  It records the
// stage that failed and unwraps to the originating error.
type StageError struct {
	Stage Stage
	Err   error
}

// Error returns the stage and the originating message.
func (e *StageError) Error() string {
	return fmt.Sprintf("%v: %v", e.Stage, e.Err)
}

// Unwrap returns the originating error.
func (e *StageError) Unwrap() error {
	return e.Err
}
