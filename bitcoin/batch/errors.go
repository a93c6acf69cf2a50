// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
)

// ErrNoCardinalUTXO is returned when coin selection finds no qualifying
// cardinal UTXO to inscribe on.
var ErrNoCardinalUTXO = errors.New("wallet contains no cardinal utxos")

// ErrReinscribeWithoutConflict is returned when reinscribe is set but the
// chosen satpoint carries no existing inscription to reinscribe over.
var ErrReinscribeWithoutConflict = errors.New("reinscribe flag set but no inscription exists at satpoint")

// ErrParentIncoherent is returned when an inscription's declared parent
// does not equal ParentInfo.ID.
var ErrParentIncoherent = errors.New("inscription parent does not match batch parent")

// ErrModeDestinationMismatch is returned when the destination count does
// not match what Mode requires.
var ErrModeDestinationMismatch = errors.New("destination count does not match mode")

// ErrFeeUtxosRequireSpecificUTXOs is returned when fee_utxos is set but
// inscribe_on_specific_utxos is not.
var ErrFeeUtxosRequireSpecificUTXOs = errors.New("fee_utxos requires inscribing on specific utxos")

// ErrFeeUtxosRequireZeroRates is returned when fee_utxos is set alongside
// a non-zero commit or reveal fee rate.
var ErrFeeUtxosRequireZeroRates = errors.New("fee_utxos requires zero commit and reveal fee rates")

// ErrRevealFeeTooLow is returned when a caller-supplied reveal fee is
// below the computed minimum.
var ErrRevealFeeTooLow = errors.New("supplied reveal fee below computed minimum")

// ErrExactlyOneCommitInput is returned when a no-wallet reveal does not
// carry exactly one input spending the commit output.
var ErrExactlyOneCommitInput = errors.New("reveal must spend exactly one commit input")

// ErrCommitmentReuseRequiresChange is returned when an existing commitment
// is reused without supplying the prior commitment's output and a change
// address for the reveal's leftover-value output.
var ErrCommitmentReuseRequiresChange = errors.New("reusing a commitment requires commitment_output and a change address")

// ErrDummyCommitIncomplete is returned when the wallet could not fully sign
// the dummy commit built to measure commit vsize for the fee_utxos split.
var ErrDummyCommitIncomplete = errors.New("wallet could not fully sign dummy commit for vsize measurement")

// PreconditionError reports that a precondition about the batch request
// itself (mode/destination mismatch, illegal flag combination, a
// duplicate or cross-utxo inscription conflict) was violated before any
// transaction construction began.
type PreconditionError struct {
	Cause error
}

// Error implements error.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition violated: %s", e.Cause)
}

// Unwrap implements errors.Unwrap.
func (e *PreconditionError) Unwrap() error { return e.Cause }

// WalletInsufficientError reports that the wallet cannot fund the build:
// no cardinal UTXO, or the cardinal found is too small to cover fee+dust.
type WalletInsufficientError struct {
	Need *btcutil.Amount
	Have *btcutil.Amount
}

// Error implements error.
func (e *WalletInsufficientError) Error() string {
	if e.Need == nil || e.Have == nil {
		return "insufficient wallet balance"
	}

	return fmt.Sprintf("insufficient wallet balance: need %s, have %s", e.Need, e.Have)
}

// DustError reports that the commit output, or the change output of a
// reused commitment's reveal, fell below the dust threshold for its script.
type DustError struct {
	Value btcutil.Amount
	Dust  btcutil.Amount
}

// Error implements error.
func (e *DustError) Error() string {
	return fmt.Sprintf("output value %s below dust limit %s", e.Value, e.Dust)
}

// WeightError reports that the reveal transaction exceeds the standard
// weight limit and no_limit was not set.
type WeightError struct {
	Weight int
	Max    int
}

// Error implements error.
func (e *WeightError) Error() string {
	return fmt.Sprintf("reveal weight %d exceeds max standard weight %d", e.Weight, e.Max)
}

// SigningError reports that the wallet could not sign the commit or
// reveal transaction.
type SigningError struct {
	Stage string // "commit" or "reveal".
	Cause error
}

// Error implements error.
func (e *SigningError) Error() string {
	return fmt.Sprintf("%s signing failed: %s", e.Stage, e.Cause)
}

// Unwrap implements errors.Unwrap.
func (e *SigningError) Unwrap() error { return e.Cause }

// PartialBroadcastError reports that the commit transaction was accepted
// by the network but the reveal was rejected: the committed funds are
// still recoverable via the backed-up recovery key.
type PartialBroadcastError struct {
	CommitTxID string
	Cause      error
}

// Error implements error.
func (e *PartialBroadcastError) Error() string {
	return fmt.Sprintf("reveal broadcast failed after commit %s was accepted: %s; "+
		"funds are recoverable via the backed-up recovery key", e.CommitTxID, e.Cause)
}

// Unwrap implements errors.Unwrap.
func (e *PartialBroadcastError) Unwrap() error { return e.Cause }

// PSBTMergeError reports that a caller-supplied reveal PSBT could not be
// merged: wrong input count, mismatched previous_output, or an unsigned
// witness where a signature was expected.
type PSBTMergeError struct {
	Reason string
}

// Error implements error.
func (e *PSBTMergeError) Error() string {
	return fmt.Sprintf("reveal psbt merge failed: %s", e.Reason)
}
