// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package runes_test

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"ordforge/bitcoin/ord/runes"
)

func TestOutputsCarryingRunes(t *testing.T) {
	runestone := &runes.Runestone{
		Edicts: []runes.Edict{
			{
				RuneID: runes.RuneID{Block: 2585359, TxID: 84},
				Amount: big.NewInt(1_000),
				Output: 2,
			},
		},
	}

	script, err := runestone.IntoScript()
	require.NoError(t, err)

	tx := wire.NewMsgTx(2)
	tx.AddTxOut(wire.NewTxOut(0, []byte{0x51}))
	tx.AddTxOut(wire.NewTxOut(0, []byte{0x51}))
	tx.AddTxOut(wire.NewTxOut(0, []byte{0x51}))
	tx.AddTxOut(wire.NewTxOut(0, script))

	outputs, err := runes.OutputsCarryingRunes(tx)
	require.NoError(t, err)
	require.True(t, outputs[2])
	require.False(t, outputs[0])

	t.Run("no runestone output yields an empty set", func(t *testing.T) {
		plain := wire.NewMsgTx(2)
		plain.AddTxOut(wire.NewTxOut(0, []byte{0x51}))

		outputs, err := runes.OutputsCarryingRunes(plain)
		require.NoError(t, err)
		require.Empty(t, outputs)
	})
}
