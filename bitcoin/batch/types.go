// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package batch builds the commit and reveal transaction pair that
// etches one or more inscriptions onto specific satoshis: coin
// selection, the two-transaction fee coupling, reveal signing, and the
// outermost dispatch/validation routine all live here.
package batch

import (
	"math/big"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"

	"ordforge/bitcoin/ord/inscriptions"
)

// Mode governs how many reveal outputs carry how many inscriptions.
type Mode string

const (
	// ModeSameSat stacks every inscription onto a single satoshi, all
	// sharing one reveal output at offset 0.
	ModeSameSat Mode = "same-sat"
	// ModeSeparateOutputs gives each inscription its own reveal output.
	ModeSeparateOutputs Mode = "separate-outputs"
	// ModeSharedOutput packs every inscription into one reveal output,
	// each at its own sat offset within it.
	ModeSharedOutput Mode = "shared-output"
)

// SatPoint identifies a single satoshi by its position within an unspent output.
type SatPoint struct {
	Outpoint wire.OutPoint
	Offset   uint64
}

// ParentInfo is present iff all inscriptions in the batch share a declared parent.
type ParentInfo struct {
	Location   SatPoint
	ID         inscriptions.ID
	Destination btcutil.Address
	PrevOutput  wire.TxOut
}

// BatchEntry is one inscription's configuration: content file, optional
// per-entry destination, optional metadata, metaprotocol, and a specific
// UTXO to inscribe on.
type BatchEntry struct {
	File         string
	Destination  string
	Metadata     any
	MetadataJSON any
	Metaprotocol string
	UTXO         *wire.OutPoint
}

// InscribeOnSpecificUTXOs reports whether every entry in entries names a
// specific UTXO to inscribe on, the precondition fee_utxos requires.
func InscribeOnSpecificUTXOs(entries []BatchEntry) bool {
	if len(entries) == 0 {
		return false
	}

	for _, e := range entries {
		if e.UTXO == nil {
			return false
		}
	}

	return true
}

// targetKind distinguishes the three Target arms.
type targetKind byte

const (
	targetValue targetKind = iota
	targetNoChange
	targetChangeIsFee
)

// Target is the fee-policy tagged union that drives coin selection:
// exactly one of Value/NoChange/ChangeIsFee is ever current.
type Target struct {
	kind   targetKind
	amount *big.Int
}

// TargetValue requires the selection to produce a change output returning
// any excess over amount to the wallet.
func TargetValue(amount *big.Int) Target {
	return Target{kind: targetValue, amount: amount}
}

// TargetNoChange requires the selection to cover amount with no change
// output: Select reports zero change, so any excess is not returned —
// used for commit_only and when sizing a dummy commit for vsize measurement.
func TargetNoChange(amount *big.Int) Target {
	return Target{kind: targetNoChange, amount: amount}
}

// TargetChangeIsFee lets any excess over amount be absorbed as additional
// miner fee rather than returned as change — used for the fee_utxos flow.
func TargetChangeIsFee(amount *big.Int) Target {
	return Target{kind: targetChangeIsFee, amount: amount}
}

// Amount returns the Target's underlying amount regardless of kind.
func (t Target) Amount() *big.Int { return t.amount }

// IsValue reports whether t is the Value arm.
func (t Target) IsValue() bool { return t.kind == targetValue }

// IsNoChange reports whether t is the NoChange arm.
func (t Target) IsNoChange() bool { return t.kind == targetNoChange }

// IsChangeIsFee reports whether t is the ChangeIsFee arm.
func (t Target) IsChangeIsFee() bool { return t.kind == targetChangeIsFee }

// InscriptionLocation reports where one built inscription ended up.
type InscriptionLocation struct {
	ID       inscriptions.ID
	Location SatPoint
}

// Outcome is the result of a build: either a signed/unsigned commit+reveal
// pair, or (no-wallet mode with fee_utxos and no caller-supplied
// commit_vsize) a dummy commit PSBT the caller must sign and measure
// before the build can be retried with commit_vsize set.
type Outcome struct {
	Commit             *wire.MsgTx
	Reveal             *wire.MsgTx
	CommitHex          string
	CommitPSBT         string
	RevealHex          string
	RevealPSBT         string
	RecoveryWIF        string
	RecoveryDescriptor string
	Parent             *InscriptionLocation
	Inscriptions       []InscriptionLocation
	TotalFees          btcutil.Amount
	Message            string

	// NeedsCommitSize is non-nil when the build cannot proceed without a
	// signed dummy commit PSBT to measure vsize from (no-wallet + fee_utxos).
	NeedsCommitSize []byte
}
