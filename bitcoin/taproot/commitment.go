// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package taproot derives the commit output and reveal script-path spend
// data for a batch of inscription envelopes, generalizing the teacher's
// N-of-N multisig taproot-address helpers to a single ordinal-envelope
// leaf plus key-path recovery.
package taproot

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"ordforge/bitcoin/utils"
)

// Commitment holds everything derived from tweaking an internal key with a
// single reveal-script leaf: the commit address the funding output pays to,
// and the control block the reveal input's witness must carry to spend
// that leaf via the script path.
type Commitment struct {
	InternalKey  *btcec.PublicKey
	LeafScript   []byte
	MerkleRoot   []byte
	ControlBlock []byte
	Address      *btcutil.AddressTaproot
}

// Derive builds the Commitment for a single reveal-script leaf under the
// given internal key, following the teacher's
// NewTaprootAddressFromScripts/NewTapScriptTreeFromRawScripts pattern
// generalized from an N-leaf multisig tree down to the batch's one leaf.
func Derive(internalPrivateKey *btcec.PrivateKey, leafScript []byte, chainParams *chaincfg.Params) (*Commitment, error) {
	tapScriptTree, err := utils.NewTapScriptTreeFromRawScripts(leafScript)
	if err != nil {
		return nil, err
	}

	internalKey := internalPrivateKey.PubKey()
	merkleRoot := tapScriptTree.RootNode.TapHash()

	outputKey := txscript.ComputeTaprootOutputKey(internalKey, merkleRoot[:])
	address, err := btcutil.NewAddressTaproot(schnorr.SerializePubKey(outputKey), chainParams)
	if err != nil {
		return nil, err
	}

	controlBlock := tapScriptTree.LeafMerkleProofs[0].ToControlBlock(internalKey)
	controlBlockBytes, err := controlBlock.ToBytes()
	if err != nil {
		return nil, err
	}

	return &Commitment{
		InternalKey:  internalKey,
		LeafScript:   leafScript,
		MerkleRoot:   merkleRoot[:],
		ControlBlock: controlBlockBytes,
		Address:      address,
	}, nil
}

// RecoveryPrivateKey tweaks internalPrivateKey with the Commitment's merkle
// root, yielding the key-path private key that can sweep the commit output
// directly (bypassing the script path) if the reveal transaction is lost.
// This is the step the teacher's multisig-only helpers never needed, since
// they never offered a key-path spend alongside the script path.
func (c *Commitment) RecoveryPrivateKey(internalPrivateKey *btcec.PrivateKey) *btcec.PrivateKey {
	return txscript.TweakTaprootPrivKey(*internalPrivateKey, c.MerkleRoot)
}
