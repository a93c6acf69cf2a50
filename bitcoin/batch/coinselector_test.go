// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch_test

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"ordforge/bitcoin/batch"
)

func TestSelectSatpoints(t *testing.T) {
	cardinal := wire.OutPoint{Index: 1}

	t.Run("default scan skips locked, runic and fee-reserved outpoints", func(t *testing.T) {
		req := batch.CoinSelectionRequest{
			CardinalUTXOs: []batch.WalletUTXO{
				{Outpoint: wire.OutPoint{Index: 0}, Value: 1_000},
				{Outpoint: wire.OutPoint{Index: 2}, Value: 1_000},
				{Outpoint: wire.OutPoint{Index: 3}, Value: 1_000},
				{Outpoint: cardinal, Value: 1_000},
			},
			LockedOutpoints:  map[wire.OutPoint]bool{{Index: 0}: true},
			RunicOutpoints:   map[wire.OutPoint]bool{{Index: 2}: true},
			FeeUTXOOutpoints: map[wire.OutPoint]bool{{Index: 3}: true},
		}

		satpoints, err := batch.SelectSatpoints(req)
		require.NoError(t, err)
		require.Len(t, satpoints, 1)
		require.Equal(t, cardinal, satpoints[0].Outpoint)
	})

	t.Run("no eligible cardinal utxo errors", func(t *testing.T) {
		req := batch.CoinSelectionRequest{
			CardinalUTXOs: []batch.WalletUTXO{{Outpoint: wire.OutPoint{Index: 0}, Value: 1_000}},
			RunicOutpoints: map[wire.OutPoint]bool{{Index: 0}: true},
		}

		_, err := batch.SelectSatpoints(req)
		require.ErrorIs(t, err, batch.ErrNoCardinalUTXO)
	})

	t.Run("specific utxos map one-to-one with entries", func(t *testing.T) {
		utxo := wire.OutPoint{Index: 7}
		req := batch.CoinSelectionRequest{
			InscribeOnSpecificUTXOs: true,
			Entries:                 []batch.BatchEntry{{File: "a.png", UTXO: &utxo}},
		}

		satpoints, err := batch.SelectSatpoints(req)
		require.NoError(t, err)
		require.Len(t, satpoints, 1)
		require.Equal(t, utxo, satpoints[0].Outpoint)
	})
}

func TestCheckConflicts(t *testing.T) {
	sp := batch.SatPoint{Outpoint: wire.OutPoint{Index: 0}}

	t.Run("conflict without reinscribe errors", func(t *testing.T) {
		req := batch.CoinSelectionRequest{InscribedOutpoints: map[wire.OutPoint]batch.SatPoint{sp.Outpoint: sp}}
		err := batch.CheckConflicts([]batch.SatPoint{sp}, req)
		require.Error(t, err)
	})

	t.Run("reinscribe at the conflicting satpoint is accepted", func(t *testing.T) {
		req := batch.CoinSelectionRequest{
			InscribedOutpoints: map[wire.OutPoint]batch.SatPoint{sp.Outpoint: sp},
			Reinscribe:         true,
		}
		err := batch.CheckConflicts([]batch.SatPoint{sp}, req)
		require.NoError(t, err)
	})

	t.Run("reinscribe without any conflict errors", func(t *testing.T) {
		req := batch.CoinSelectionRequest{Reinscribe: true}
		err := batch.CheckConflicts([]batch.SatPoint{sp}, req)
		require.Error(t, err)
	})
}

func TestCommitTarget(t *testing.T) {
	require.True(t, batch.CommitTarget(true, false, 1_000).IsNoChange())
	require.True(t, batch.CommitTarget(false, true, 1_000).IsChangeIsFee())
	require.True(t, batch.CommitTarget(false, false, 1_000).IsValue())
}

func TestCommitTargetAmount(t *testing.T) {
	target := batch.CommitTarget(false, false, 2_500)
	require.EqualValues(t, big.NewInt(2_500), target.Amount())
}
