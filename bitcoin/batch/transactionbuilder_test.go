// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch_test

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"ordforge/bitcoin/batch"
)

func changeAddr(t *testing.T) btcutil.Address {
	t.Helper()

	addr, err := btcutil.NewAddressPubKeyHash(make([]byte, 20), &chaincfg.RegressionNetParams)
	require.NoError(t, err)

	return addr
}

func TestTransactionBuilderSelect(t *testing.T) {
	utxos := []batch.WalletUTXO{
		{Outpoint: wire.OutPoint{Index: 0}, Value: 1_000},
		{Outpoint: wire.OutPoint{Index: 1}, Value: 5_000},
		{Outpoint: wire.OutPoint{Index: 2}, Value: 20_000},
	}

	t.Run("Value target produces change", func(t *testing.T) {
		builder := batch.NewTransactionBuilder(changeAddr(t))
		selected, total, change, err := builder.Select(utxos, batch.TargetValue(big.NewInt(4_500)))
		require.NoError(t, err)
		require.NotEmpty(t, selected)
		require.GreaterOrEqual(t, int64(total), int64(4_500))
		require.EqualValues(t, total-4_500, change)
	})

	t.Run("NoChange target leaves no explicit change", func(t *testing.T) {
		builder := batch.NewTransactionBuilder(changeAddr(t))
		_, _, change, err := builder.Select(utxos, batch.TargetNoChange(big.NewInt(5_000)))
		require.NoError(t, err)
		require.Zero(t, change)
	})

	t.Run("insufficient utxos errors", func(t *testing.T) {
		builder := batch.NewTransactionBuilder(changeAddr(t))
		_, _, _, err := builder.Select(utxos, batch.TargetValue(big.NewInt(1_000_000)))
		require.Error(t, err)
	})

	t.Run("MustInclude forces an outpoint into the selection", func(t *testing.T) {
		builder := batch.NewTransactionBuilder(changeAddr(t))
		builder.MustInclude = []wire.OutPoint{{Index: 0}}

		selected, _, _, err := builder.Select(utxos, batch.TargetValue(big.NewInt(500)))
		require.NoError(t, err)

		var found bool
		for _, u := range selected {
			if u.Outpoint.Index == 0 {
				found = true
			}
		}
		require.True(t, found)
	})
}
