// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/wire"
)

// nullOutpoint is the all-zero sentinel satpoint used when an existing
// commitment is being reused: the real outpoint is patched in later.
var nullOutpoint = wire.OutPoint{}

// CoinSelectionRequest carries everything CoinSelector needs to choose the
// reveal's satpoints and to configure the commit TransactionBuilder.
type CoinSelectionRequest struct {
	Entries               []BatchEntry
	InscribeOnSpecificUTXOs bool
	Commitment            *wire.OutPoint
	Satpoint               *SatPoint
	CardinalUTXOs          []WalletUTXO
	InscribedOutpoints     map[wire.OutPoint]SatPoint // already-inscribed satpoints, keyed by outpoint.
	LockedOutpoints        map[wire.OutPoint]bool
	RunicOutpoints         map[wire.OutPoint]bool
	FeeUTXOOutpoints       map[wire.OutPoint]bool
	Reinscribe             bool
}

// SelectSatpoints implements the reveal satpoint-selection rule of §4.4:
// exactly one satpoint per batch entry, or a single shared satpoint/null
// sentinel, depending on the request shape.
func SelectSatpoints(req CoinSelectionRequest) ([]SatPoint, error) {
	switch {
	case req.InscribeOnSpecificUTXOs:
		satpoints := make([]SatPoint, len(req.Entries))
		for i, entry := range req.Entries {
			satpoints[i] = SatPoint{Outpoint: *entry.UTXO, Offset: 0}
		}

		return satpoints, nil

	case req.Commitment != nil:
		return []SatPoint{{Outpoint: nullOutpoint, Offset: 0}}, nil

	case req.Satpoint != nil:
		return []SatPoint{*req.Satpoint}, nil

	default:
		for _, utxo := range req.CardinalUTXOs {
			if utxo.Value <= 0 {
				continue
			}

			if req.LockedOutpoints[utxo.Outpoint] || req.RunicOutpoints[utxo.Outpoint] || req.FeeUTXOOutpoints[utxo.Outpoint] {
				continue
			}

			if _, inscribed := req.InscribedOutpoints[utxo.Outpoint]; inscribed {
				continue
			}

			return []SatPoint{{Outpoint: utxo.Outpoint, Offset: 0}}, nil
		}

		return nil, ErrNoCardinalUTXO
	}
}

// CheckConflicts implements the reinscribe-guard rule of §4.4/§8 property
// 9: every chosen satpoint must not already carry an inscription, unless
// that inscription sits at the exact same satpoint and Reinscribe is set.
// Setting Reinscribe without any such conflict is itself an error.
func CheckConflicts(satpoints []SatPoint, req CoinSelectionRequest) error {
	conflictFound := false

	for _, sp := range satpoints {
		existing, inscribed := req.InscribedOutpoints[sp.Outpoint]
		if !inscribed {
			continue
		}

		if existing == sp && req.Reinscribe {
			conflictFound = true

			continue
		}

		return &PreconditionError{Cause: fmt.Errorf("satpoint %s:%d conflicts with the inscription at %s:%d",
			sp.Outpoint, sp.Offset, existing.Outpoint, existing.Offset)}
	}

	if req.Reinscribe && !conflictFound {
		return &PreconditionError{Cause: ErrReinscribeWithoutConflict}
	}

	return nil
}

// CommitTarget computes the Target the commit TransactionBuilder must
// satisfy, per §4.4's three-armed rule.
func CommitTarget(commitOnly, hasFeeUTXOs bool, revealFeeAndPostage int64) Target {
	amount := big.NewInt(revealFeeAndPostage)

	switch {
	case commitOnly:
		return TargetNoChange(amount)
	case hasFeeUTXOs:
		return TargetChangeIsFee(amount)
	default:
		return TargetValue(amount)
	}
}
