// Copyright (c) 2015-2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package build

import (
	"os"

	"github.com/btcsuite/btclog"
)

// LogType selects where sub-loggers write.  It is fixed at compile time by
// the stdlog and nolog build tags.
type LogType byte

const (
	// LogTypeNone disables logging.
	LogTypeNone LogType = iota

	// LogTypeStdOut writes every subsystem straight to stdout.  Unit
	// tests use it.
	LogTypeStdOut

	// LogTypeDefault defers to the backend of the running binary.
	LogTypeDefault
)

var logTypeNames = [...]string{
	LogTypeNone:    "none",
	LogTypeStdOut:  "stdout",
	LogTypeDefault: "default",
}

// String returns a human readable identifier for the logging type.
func (t LogType) String() string {
	if int(t) < len(logTypeNames) {
		return logTypeNames[t]
	}
	return "unknown"
}

// NewSubLogger returns the logger of subsystem.  Production builds and
// development builds using the default log type take it from genSubLogger,
// which is normally the Logger method of the binary's btclog backend.
// Development builds tagged stdlog get a private stdout logger at LogLevel.
// Anything else, including a nil genSubLogger, yields btclog.Disabled.
//
// Library packages call it with a nil genSubLogger from init, leaving their
// output off until a binary hands them a logger through UseLogger.
func NewSubLogger(subsystem string,
	genSubLogger func(string) btclog.Logger) btclog.Logger {

	if Deployment == Development && LoggingType == LogTypeStdOut {
		return stdoutLogger(subsystem)
	}

	useBackend := Deployment == Production ||
		LoggingType == LogTypeDefault
	if useBackend && genSubLogger != nil {
		return genSubLogger(subsystem)
	}

	return btclog.Disabled
}

// stdoutLogger creates a logger for subsystem with its own stdout backend.
func stdoutLogger(subsystem string) btclog.Logger {
	logger := btclog.NewBackend(os.Stdout).Logger(subsystem)
	level, _ := btclog.LevelFromString(LogLevel)
	logger.SetLevel(level)
	return logger
}
