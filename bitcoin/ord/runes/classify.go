// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// OutputsCarryingRunes scans a transaction for an OP_RETURN runestone and
// returns the set of output indexes that end up holding a rune balance:
// every edict destination, plus the pointer-designated default output that
// receives unallocated runes, when the pointer is present.
//
// A transaction carrying no runestone, or one that fails to parse, is
// treated as carrying no runes: the caller's conflict check then falls
// back to ordinary sat-range reasoning.
func OutputsCarryingRunes(tx *wire.MsgTx) (map[uint32]bool, error) {
	result := make(map[uint32]bool)

	for _, out := range tx.TxOut {
		if txscript.GetScriptClass(out.PkScript) != txscript.NullDataTy {
			continue
		}

		if !IsPossibleRunestone(out.PkScript) {
			continue
		}

		runestone, err := ParseRunestone(out.PkScript)
		if err != nil {
			return nil, err
		}

		for _, edict := range runestone.Edicts {
			result[edict.Output] = true
		}

		if runestone.Pointer != nil {
			result[*runestone.Pointer] = true
		}

		// A transaction carries at most one runestone.
		return result, nil
	}

	return result, nil
}
