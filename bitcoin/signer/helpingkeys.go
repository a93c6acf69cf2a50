// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package signer

import (
	"errors"
)

// ErrUnknownInputsHelpingKey defines that inputs help keys is unknown.
var ErrUnknownInputsHelpingKey = errors.New("unknown inputs help keys")

// InputsHelpingKey defines type for additional data in a PSBT Unknowns field
// to distinguish which reveal inputs are already signed by the core and
// which still need an external (wallet) signature.
type InputsHelpingKey byte

const (
	// CommitInputHelpingKey marks the reveal input spending the commit
	// output; the core always signs this one itself via RevealSigner.
	CommitInputHelpingKey InputsHelpingKey = 0x10
	// ExternalInputHelpingKey marks reveal inputs (parent, forced
	// reveal_input) that require an external wallet signature.
	ExternalInputHelpingKey InputsHelpingKey = 0x20
)

// InputsHelpingKeyFromBytes parses bytes array into InputsHelpingKey if any.
func InputsHelpingKeyFromBytes(b []byte) (InputsHelpingKey, error) {
	if len(b) != 1 {
		return 0, ErrUnknownInputsHelpingKey
	}

	switch b[0] {
	case CommitInputHelpingKey.Byte():
		return CommitInputHelpingKey, nil
	case ExternalInputHelpingKey.Byte():
		return ExternalInputHelpingKey, nil
	}

	return 0, ErrUnknownInputsHelpingKey
}

// Byte returns InputsHelpingKey as byte.
func (k InputsHelpingKey) Byte() byte {
	return byte(k)
}

// Bytes returns InputsHelpingKey as bytes array.
func (k InputsHelpingKey) Bytes() []byte {
	return []byte{byte(k)}
}
