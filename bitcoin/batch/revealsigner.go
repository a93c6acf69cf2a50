// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// SignReveal computes the BIP-341 script-path sighash for the reveal
// transaction's commit-input and pushes the resulting witness, grounded
// on the teacher's signTaprootInput script-path branch
// (RawTxInTapscriptSignature/NewTxSigHashes/NewMultiPrevOutFetcher) but
// operating directly on a wire.MsgTx rather than a psbt.Packet, since the
// commit input's witness is always self-produced here, never
// wallet-produced.
func SignReveal(reveal *wire.MsgTx, commitInputIndex int, prevouts []*wire.TxOut, revealScript, controlBlock []byte, internalPrivateKey *btcec.PrivateKey) error {
	fetcherMap := make(map[wire.OutPoint]*wire.TxOut, len(reveal.TxIn))
	for i, in := range reveal.TxIn {
		fetcherMap[in.PreviousOutPoint] = prevouts[i]
	}

	fetcher := txscript.NewMultiPrevOutFetcher(fetcherMap)
	sigHashes := txscript.NewTxSigHashes(reveal, fetcher)

	commitOut := prevouts[commitInputIndex]
	tapLeaf := txscript.NewBaseTapLeaf(revealScript)

	sig, err := txscript.RawTxInTapscriptSignature(
		reveal, sigHashes, commitInputIndex, commitOut.Value, commitOut.PkScript,
		tapLeaf, txscript.SigHashDefault, internalPrivateKey,
	)
	if err != nil {
		return err
	}

	reveal.TxIn[commitInputIndex].Witness = wire.TxWitness{sig, revealScript, controlBlock}

	return nil
}

// RecoveryMatchesCommitAddress verifies §8 property 7: the stored
// recovery WIF, tweaked with the leaf merkle root, reproduces the
// commit output key. Keys are compared x-only, as a taproot output commits
// only to the key's x coordinate.
func RecoveryMatchesCommitAddress(recoveryPrivateKey *btcec.PrivateKey, commitOutputKey *btcec.PublicKey) bool {
	return bytes.Equal(schnorr.SerializePubKey(recoveryPrivateKey.PubKey()), schnorr.SerializePubKey(commitOutputKey))
}
