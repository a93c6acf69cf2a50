// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package signer

import (
	"bytes"
	"errors"

	"github.com/btcsuite/btcd/btcutil/psbt"
)

// ExtractInputIndexesFromPSBT returns a map from InputsHelpingKey to the
// reveal input indexes tagged with it, read from a PSBT's Unknowns field.
// Nothing in bitcoin/batch calls it: the blank reveal PSBTs built there
// carry no Unknowns entries.
func ExtractInputIndexesFromPSBT(data []byte) (map[InputsHelpingKey][]int, error) {
	var result = make(map[InputsHelpingKey][]int, 2)
	p, err := psbt.NewFromRawBytes(bytes.NewBuffer(data), false)
	if err != nil {
		return nil, err
	}

	for _, unknown := range p.Unknowns {
		if len(unknown.Key) != 1 {
			continue
		}

		key, err := InputsHelpingKeyFromBytes(unknown.Key)
		if err != nil {
			return nil, errors.Join(ErrUnknownInputsHelpingKey, err)
		}

		result[key] = make([]int, len(unknown.Value))
		for idx, val := range unknown.Value {
			result[key][idx] = int(val)
		}
	}

	return result, nil
}
