// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch

import "github.com/btcsuite/btclog"

// log is the package-level logger, disabled until UseLogger is called,
// following the btcsuite convention of a swappable no-op default.
var log = btclog.Disabled

// UseLogger lets a caller wire this package's logging into its own
// logging backend.
func UseLogger(logger btclog.Logger) {
	log = logger
}
