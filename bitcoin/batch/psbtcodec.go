// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
)

// maxWitnessItemSize bounds a single witness stack element read out of a
// caller-supplied PSBT's FinalScriptWitness field.
const maxWitnessItemSize = 1 << 20

// packetBase64 serializes a PSBT packet to its BIP-174 base64 wire form,
// following the teacher's psbt.Packet.Serialize usage (bitcoin/txbuilder,
// bitcoin/signer) but base64-encoding the result for the external result
// shape instead of returning raw bytes.
func packetBase64(p *psbt.Packet) (string, error) {
	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// commitPSBTBase64 wraps an unsigned commit tx as a PSBT with witness_utxo
// set on every input, for a no-wallet caller to sign externally.
func commitPSBTBase64(tx *wire.MsgTx, selected []WalletUTXO) (string, error) {
	packet, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return "", err
	}

	for i, u := range selected {
		packet.Inputs[i].WitnessUtxo = wire.NewTxOut(int64(u.Value), u.Script)
	}

	return packetBase64(packet)
}

// blankRevealPSBTBase64 wraps the (already self-signed on its commit input)
// reveal skeleton as a PSBT with witness_utxo set on every input, so an
// external wallet can sign the remaining inputs. Witnesses already present
// on the skeleton are carried as each input's final_scriptwitness, since
// the PSBT's unsigned transaction itself must carry none.
func blankRevealPSBTBase64(skeleton *wire.MsgTx, prevouts []*wire.TxOut) (string, error) {
	unsigned := skeleton.Copy()
	for _, in := range unsigned.TxIn {
		in.Witness = nil
	}

	packet, err := psbt.NewFromUnsignedTx(unsigned)
	if err != nil {
		return "", err
	}

	for i, prevout := range prevouts {
		packet.Inputs[i].WitnessUtxo = prevout
	}

	for i, in := range skeleton.TxIn {
		if len(in.Witness) == 0 {
			continue
		}

		var witness bytes.Buffer
		if err := psbt.WriteTxWitness(&witness, in.Witness); err != nil {
			return "", err
		}
		packet.Inputs[i].FinalScriptWitness = witness.Bytes()
	}

	return packetBase64(packet)
}

// mergeRevealPSBT merges the externally-signed witnesses from a
// caller-supplied reveal PSBT into skeleton, leaving commitInputIndex
// untouched since that witness is always self-produced by SignReveal.
// Per-input previous_output must match exactly and every non-commit input
// must already carry a finalized witness.
func mergeRevealPSBT(skeleton *wire.MsgTx, commitInputIndex int, callerPSBTBase64 string) error {
	raw, err := base64.StdEncoding.DecodeString(callerPSBTBase64)
	if err != nil {
		return &PSBTMergeError{Reason: fmt.Sprintf("invalid base64: %s", err)}
	}

	packet, err := psbt.NewFromRawBytes(bytes.NewReader(raw), false)
	if err != nil {
		return &PSBTMergeError{Reason: fmt.Sprintf("invalid psbt: %s", err)}
	}

	if len(packet.Inputs) != len(skeleton.TxIn) {
		return &PSBTMergeError{Reason: "input count mismatch"}
	}

	for i, in := range skeleton.TxIn {
		if packet.UnsignedTx.TxIn[i].PreviousOutPoint != in.PreviousOutPoint {
			return &PSBTMergeError{Reason: fmt.Sprintf("input %d previous_output mismatch", i)}
		}

		if i == commitInputIndex {
			continue
		}

		witness, err := decodeFinalWitness(packet.Inputs[i].FinalScriptWitness)
		if err != nil {
			return &PSBTMergeError{Reason: fmt.Sprintf("input %d: %s", i, err)}
		}

		if len(witness) == 0 {
			return &PSBTMergeError{Reason: fmt.Sprintf("input %d carries no signature", i)}
		}

		skeleton.TxIn[i].Witness = witness
	}

	return nil
}

// decodeFinalWitness parses a PSBT's final_scriptwitness field: a compact
// size count followed by that many compact-size-prefixed witness elements.
func decodeFinalWitness(raw []byte) (wire.TxWitness, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	r := bytes.NewReader(raw)
	count, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return nil, err
	}

	witness := make(wire.TxWitness, count)
	for i := range witness {
		elem, err := wire.ReadVarBytes(r, 0, maxWitnessItemSize, "witness item")
		if err != nil {
			return nil, err
		}

		witness[i] = elem
	}

	return witness, nil
}
