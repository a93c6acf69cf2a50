// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch_test

import (
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"ordforge/bitcoin/batch"
)

func TestResolveFeeUTXOSplit(t *testing.T) {
	// S5: two fee utxos totaling 10,000 sats, commit vsize 110, reveal
	// vsize 140, total 250 => reveal_fee = ceil(10_000*140/250) = 5_600,
	// commit_fee = 4_400.
	solution := batch.ResolveFeeUTXOSplit(10_000, 140, 110)
	require.EqualValues(t, 5_600, solution.RevealFee)
	require.EqualValues(t, 4_400, solution.CommitFee)
	require.EqualValues(t, 5_600+4_400, solution.RevealFee+solution.CommitFee)
}

func TestFeeForRate(t *testing.T) {
	require.EqualValues(t, 500, batch.FeeForRate(100, 5))
	require.EqualValues(t, 0, batch.FeeForRate(0, 5))
}

func TestRevealVirtualSize(t *testing.T) {
	commitOutpoint := wire.OutPoint{Index: 0}
	outputs := []*wire.TxOut{wire.NewTxOut(10_000, []byte{0x51})}

	skeleton := batch.BuildRevealSkeleton([]wire.OutPoint{commitOutpoint}, outputs)
	require.Len(t, skeleton.TxIn, 1)
	require.Len(t, skeleton.TxOut, 1)

	revealScript := []byte{0x20}
	controlBlock := make([]byte, 33)

	vsize := batch.RevealVirtualSize(skeleton, 0, revealScript, controlBlock)
	require.Greater(t, vsize, 0)

	// the dummy witness must not mutate the skeleton passed in.
	require.Empty(t, skeleton.TxIn[0].Witness)
}
