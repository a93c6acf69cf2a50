// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch

import (
	"errors"
	"math/big"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"

	"ordforge/internal/numbers"
)

// ErrInvalidUTXOAmount is returned when there are not enough eligible
// UTXOs to satisfy the requested Target.
var ErrInvalidUTXOAmount = errors.New("insufficient utxos to satisfy target")

// WalletUTXO is one spendable output the wallet reports, keyed by its
// outpoint, carrying its value and locking script.
type WalletUTXO struct {
	Outpoint wire.OutPoint
	Value    btcutil.Amount
	Script   []byte
}

// TransactionBuilder selects commit-transaction inputs against a Target,
// generalizing the teacher's rune/bitcoin-amount-targeted greedy selector
// to the three-armed fee Target of this domain.
type TransactionBuilder struct {
	changeAddress btcutil.Address

	// MustInclude carries force_input/reveal_input: outpoints the caller
	// requires in the selection regardless of what greedy selection
	// would otherwise choose.
	MustInclude []wire.OutPoint
}

// NewTransactionBuilder is a constructor for TransactionBuilder.
func NewTransactionBuilder(changeAddress btcutil.Address) *TransactionBuilder {
	return &TransactionBuilder{changeAddress: changeAddress}
}

// Select picks a subset of utxos whose total satisfies target, returning
// the selected inputs, the total value selected, and the change amount to
// return (zero for NoChange/ChangeIsFee targets).
func (b *TransactionBuilder) Select(utxos []WalletUTXO, target Target) ([]WalletUTXO, btcutil.Amount, btcutil.Amount, error) {
	amountFn := func(u *WalletUTXO) *big.Int { return big.NewInt(int64(u.Value)) }

	forced := make([]WalletUTXO, 0, len(b.MustInclude))
	remaining := make([]WalletUTXO, 0, len(utxos))
	forcedSet := make(map[wire.OutPoint]bool, len(b.MustInclude))
	for _, op := range b.MustInclude {
		forcedSet[op] = true
	}

	forcedTotal := big.NewInt(0)
	for _, u := range utxos {
		if forcedSet[u.Outpoint] {
			forced = append(forced, u)
			forcedTotal.Add(forcedTotal, amountFn(&u))

			continue
		}

		remaining = append(remaining, u)
	}

	minAmount := new(big.Int).Set(target.Amount())
	minAmount.Sub(minAmount, forcedTotal)
	if numbers.IsNegative(minAmount) {
		minAmount = big.NewInt(0)
	}

	var (
		selected []WalletUTXO
		total    *big.Int
		err      error
	)

	if numbers.IsZero(minAmount) {
		selected, total = nil, big.NewInt(0)
	} else {
		selected, total, err = selectUTXO(remaining, amountFn, minAmount)
		if err != nil {
			return nil, 0, 0, err
		}
	}

	selected = append(forced, selected...)
	total.Add(total, forcedTotal)

	totalAmount := btcutil.Amount(total.Int64())

	var change btcutil.Amount
	if target.IsValue() {
		change = totalAmount - btcutil.Amount(target.Amount().Int64())
	}

	return selected, totalAmount, change, nil
}

// selectUTXO is a greedy selection algorithm for UTXOs: it starts from the
// last UTXO of the leading run that each cover minAmount alone (index 0
// when the first one does not), then adds unused UTXOs scanning forward
// from there until the running total covers minAmount. The list is not
// sorted here; on a list sorted by descending value the starting UTXO is
// the smallest one covering minAmount alone, or else the largest.
func selectUTXO(utxos []WalletUTXO, amountFn func(*WalletUTXO) *big.Int, minAmount *big.Int) ([]WalletUTXO, *big.Int, error) {
	if len(utxos) == 0 {
		if numbers.IsZero(minAmount) {
			return nil, big.NewInt(0), nil
		}

		return nil, nil, ErrInvalidUTXOAmount
	}

	var startIdx int
	for idx, utxo := range utxos {
		if numbers.IsGreater(minAmount, amountFn(&utxo)) {
			break
		}

		startIdx = idx
	}

	usedIdxs := []int{startIdx}
	totalAmount := new(big.Int).Set(amountFn(&utxos[startIdx]))
	selected := []WalletUTXO{utxos[startIdx]}

	for numbers.IsGreater(minAmount, totalAmount) {
		idx := selectUnused(startIdx, len(utxos), usedIdxs, !numbers.IsGreater(minAmount, totalAmount))
		if idx == -1 {
			return nil, nil, ErrInvalidUTXOAmount
		}

		usedIdxs = append(usedIdxs, idx)
		totalAmount.Add(totalAmount, amountFn(&utxos[idx]))
		selected = append(selected, utxos[idx])
	}

	return selected, totalAmount, nil
}

// selectUnused returns the first unused index, scanning forward from start
// when reversed is false, or backward from the end when reversed is true.
func selectUnused(start, end int, usedIdxs []int, reversed bool) int {
	if reversed {
		for idx := end - 1; idx >= start; idx-- {
			if !isUsed(idx, usedIdxs) {
				return idx
			}
		}
	} else {
		for idx := start; idx < end; idx++ {
			if !isUsed(idx, usedIdxs) {
				return idx
			}
		}
	}

	return -1
}

// isUsed reports whether idx is already present in usedIdxs.
func isUsed(idx int, usedIdxs []int) bool {
	for _, used := range usedIdxs {
		if used == idx {
			return true
		}
	}

	return false
}
