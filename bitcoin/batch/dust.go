// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// dustRelayFeePerKB is bitcoind's default dust-relay fee rate
// (3 sat/vbyte, expressed per kvB) used by GetDustThreshold.
const dustRelayFeePerKB = 3000

// witnessSpendOverhead is the amortized per-input overhead GetDustThreshold
// adds for a witness-program output: 32 (prevout hash) + 4 (index) + 1
// (empty scriptSig length) + 4 (sequence) + 107/4 (witness discount,
// integer division as in GetDustThreshold).
const witnessSpendOverhead = 32 + 4 + 1 + 4 + 26

// dustThreshold approximates Bitcoin Core's GetDustThreshold for a
// witness-program locking script at the default relay fee: every output
// this package produces (P2TR commit/reveal/change outputs) is a witness
// program, so the non-witness spend-overhead branch is never exercised.
func dustThreshold(script []byte) btcutil.Amount {
	size := 8 + wire.VarIntSerializeSize(uint64(len(script))) + len(script) + witnessSpendOverhead

	return btcutil.Amount((int64(size)*dustRelayFeePerKB + 999) / 1000)
}
