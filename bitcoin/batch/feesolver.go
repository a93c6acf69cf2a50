// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch

import (
	"math/big"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"

	"ordforge/internal/numbers"
)

// witnessScaleFactor is the discount witness data receives toward a
// transaction's virtual size, per BIP-141.
const witnessScaleFactor = 4

// schnorrSignatureSize is the fixed size of a BIP-340 Schnorr signature.
const schnorrSignatureSize = 64

// rbfEnabledNoLocktime is the sequence value that opts an input into
// replace-by-fee while leaving the transaction's locktime inert.
const rbfEnabledNoLocktime uint32 = 0xfffffffd

// BuildRevealSkeleton assembles the unsigned reveal transaction shape:
// version 2, locktime 0, one input per outpoint (RBF-enabled, no
// witness yet), and the given outputs.
func BuildRevealSkeleton(inputs []wire.OutPoint, outputs []*wire.TxOut) *wire.MsgTx {
	tx := wire.NewMsgTx(2)
	for _, outpoint := range inputs {
		op := outpoint
		tx.AddTxIn(&wire.TxIn{PreviousOutPoint: op, Sequence: rbfEnabledNoLocktime})
	}

	for _, out := range outputs {
		tx.AddTxOut(out)
	}

	return tx
}

// transactionVirtualSize computes a transaction's vsize: ⌈weight/4⌉,
// weight = 3·strippedSize + totalSize, exactly the BIP-141 definition the
// teacher pack's inscribing tool (GetTxVirtualSize) also implements.
func transactionVirtualSize(tx *wire.MsgTx) int {
	baseSize := tx.SerializeSizeStripped()
	totalSize := tx.SerializeSize()
	weight := baseSize*(witnessScaleFactor-1) + totalSize

	return (weight + witnessScaleFactor - 1) / witnessScaleFactor
}

// RevealVirtualSize measures the reveal transaction's vsize with a
// placeholder witness: 64 zero bytes (a dummy Schnorr signature), the
// reveal script, and the control block at commitInputIndex; a single
// placeholder byte at every other input. This is
// build_reveal_transaction's dummy-witness sizing, unchanged from the
// source.
func RevealVirtualSize(skeleton *wire.MsgTx, commitInputIndex int, revealScript, controlBlock []byte) int {
	dummy := skeleton.Copy()
	for i, in := range dummy.TxIn {
		if i == commitInputIndex {
			in.Witness = wire.TxWitness{make([]byte, schnorrSignatureSize), revealScript, controlBlock}
		} else {
			in.Witness = wire.TxWitness{[]byte{0}}
		}
	}

	return transactionVirtualSize(dummy)
}

// FeeSolution holds the resolved fees and vsizes for one build.
type FeeSolution struct {
	RevealVSize int
	CommitVSize int
	RevealFee   btcutil.Amount
	CommitFee   btcutil.Amount
}

// ResolveFeeUTXOSplit implements §4.5 step 2's ceiling-divide split:
// reveal_fee = ⌈fee_utxo_value · V_r / (V_c + V_r)⌉, commit pays the
// remainder via ChangeIsFee.
func ResolveFeeUTXOSplit(feeUTXOValue btcutil.Amount, revealVSize, commitVSize int) FeeSolution {
	totalVSize := revealVSize + commitVSize

	product := new(big.Int).Mul(big.NewInt(int64(feeUTXOValue)), big.NewInt(int64(revealVSize)))
	revealFeeBig := numbers.CeilDivBigInt(product, big.NewInt(int64(totalVSize)))
	revealFee := btcutil.Amount(revealFeeBig.Int64())

	return FeeSolution{
		RevealVSize: revealVSize,
		CommitVSize: commitVSize,
		RevealFee:   revealFee,
		CommitFee:   feeUTXOValue - revealFee,
	}
}

// FeeForRate returns the fee in satoshis for vsize virtual bytes at the
// given satoshis-per-vbyte rate.
func FeeForRate(vsize int, feeRatePerVByte int64) btcutil.Amount {
	return btcutil.Amount(int64(vsize) * feeRatePerVByte)
}
