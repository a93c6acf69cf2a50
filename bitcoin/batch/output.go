// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"ordforge/bitcoin/ord/inscriptions"
)

// PostageEntry is one reveal output's value and destination, alongside the
// inscription IDs it will carry once the reveal transaction's inputs are
// assembled and its outputs materialize.
type PostageEntry struct {
	Value       btcutil.Amount
	Destination btcutil.Address
}

// PlanOutputs builds the reveal output list and the per-inscription
// locations implied by mode, following Batch::output()'s layout rules:
// SameSat puts everything on one output at offset 0; SeparateOutputs gives
// every inscription its own output at offset 0; SharedOutput packs every
// inscription into one output, each at the running-total offset of the
// postage committed ahead of it.
func PlanOutputs(mode Mode, ids []inscriptions.ID, destinations []btcutil.Address, postagePerInscription btcutil.Amount, parent *ParentInfo) ([]*wire.TxOut, []InscriptionLocation, error) {
	if mode == ModeSeparateOutputs && len(destinations) != len(ids) {
		return nil, nil, &PreconditionError{Cause: ErrModeDestinationMismatch}
	}

	if mode != ModeSeparateOutputs && len(destinations) < 1 {
		return nil, nil, &PreconditionError{Cause: ErrModeDestinationMismatch}
	}

	var outputs []*wire.TxOut
	var locations []InscriptionLocation

	vout := uint32(0)
	if parent != nil {
		script, err := txOutScript(parent.Destination)
		if err != nil {
			return nil, nil, err
		}

		outputs = append(outputs, wire.NewTxOut(int64(parent.PrevOutput.Value), script))
		vout++
	}

	switch mode {
	case ModeSameSat:
		script, err := txOutScript(destinations[0])
		if err != nil {
			return nil, nil, err
		}

		outputs = append(outputs, wire.NewTxOut(int64(postagePerInscription), script))
		for _, id := range ids {
			locations = append(locations, InscriptionLocation{
				ID:       id,
				Location: SatPoint{Outpoint: wire.OutPoint{Index: vout}, Offset: 0},
			})
		}

	case ModeSeparateOutputs:
		for i, id := range ids {
			script, err := txOutScript(destinations[i])
			if err != nil {
				return nil, nil, err
			}

			outputs = append(outputs, wire.NewTxOut(int64(postagePerInscription), script))
			locations = append(locations, InscriptionLocation{
				ID:       id,
				Location: SatPoint{Outpoint: wire.OutPoint{Index: vout}, Offset: 0},
			})
			vout++
		}

	case ModeSharedOutput:
		total := int64(postagePerInscription) * int64(len(ids))
		script, err := txOutScript(destinations[0])
		if err != nil {
			return nil, nil, err
		}

		outputs = append(outputs, wire.NewTxOut(total, script))

		offset := uint64(0)
		for _, id := range ids {
			locations = append(locations, InscriptionLocation{
				ID:       id,
				Location: SatPoint{Outpoint: wire.OutPoint{Index: vout}, Offset: offset},
			})
			offset += uint64(postagePerInscription)
		}
	}

	return outputs, locations, nil
}

func txOutScript(addr btcutil.Address) ([]byte, error) {
	return txscript.PayToAddrScript(addr)
}
