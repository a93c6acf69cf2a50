// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch

import (
	"context"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"ordforge/bitcoin/ord/inscriptions"
	"ordforge/bitcoin/taproot"
)

// standardWeightLimit is bitcoind's default maximum standard transaction
// weight; a reveal exceeding it is rejected unless NoLimit is set.
const standardWeightLimit = 400_000

// Request is everything the orchestrator needs to build, and optionally
// sign and broadcast, one batch's commit+reveal transaction pair.
type Request struct {
	Entries      []BatchEntry
	Inscriptions []*inscriptions.Inscription
	Mode         Mode
	Parent       *ParentInfo
	Destinations []btcutil.Address
	Postage      btcutil.Amount
	ChainParams  *chaincfg.Params
	InternalKey  *btcec.PrivateKey
	Wallet       ChainClient

	CommitFeeRate int64
	RevealFeeRate int64
	FeeUTXOs      []WalletUTXO

	// CommitVSize, when set, overrides the dummy-commit-measurement step
	// of the fee_utxos split: the caller has already signed the dummy
	// commit out-of-band (see Outcome.NeedsCommitSize) and measured it.
	CommitVSize *int

	// InscribedOutpoints carries the already-inscribed satpoints the
	// coin selector must treat as conflicts, keyed by outpoint.
	InscribedOutpoints map[wire.OutPoint]SatPoint
	LockedOutpoints    map[wire.OutPoint]bool
	RunicOutpoints     map[wire.OutPoint]bool

	// ExistingCommit, CommitmentOutput, and CommitChangeAddress together
	// drive commitment reuse (cyclic chaining, §4.5 step 4/§9): the
	// commit tx is left unbuilt, the reveal spends ExistingCommit
	// directly, and its trailing change output (paid to
	// CommitChangeAddress) absorbs the leftover value.
	ExistingCommit      *wire.OutPoint
	CommitmentOutput    *wire.TxOut
	CommitChangeAddress btcutil.Address
	RevealInputValue    btcutil.Amount

	Satpoint *SatPoint

	// RevealPSBT is a caller-supplied base64 PSBT carrying externally
	// produced witnesses for the reveal's non-commit inputs, merged in
	// during the NoWallet dispatch.
	RevealPSBT string

	DryRun      bool
	NoWallet    bool
	CommitOnly  bool
	NoLimit     bool
	NoBroadcast bool
	Reinscribe  bool
}

// Orchestrate runs the full batch build: precondition validation, coin
// selection, the two-transaction fee coupling, commitment derivation,
// reveal signing, and (unless suppressed) broadcast.
func Orchestrate(ctx context.Context, req Request) (*Outcome, error) {
	if err := validatePreconditions(req); err != nil {
		return nil, err
	}

	if req.ExistingCommit == nil {
		cardinalPool, err := cardinalScanPool(ctx, req)
		if err != nil {
			return nil, err
		}

		selectionReq := CoinSelectionRequest{
			Entries:                 req.Entries,
			InscribeOnSpecificUTXOs: InscribeOnSpecificUTXOs(req.Entries),
			Satpoint:                req.Satpoint,
			CardinalUTXOs:           cardinalPool,
			InscribedOutpoints:      req.InscribedOutpoints,
			LockedOutpoints:         req.LockedOutpoints,
			RunicOutpoints:          req.RunicOutpoints,
			Reinscribe:              req.Reinscribe,
		}

		satpoints, err := SelectSatpoints(selectionReq)
		if err != nil {
			return nil, err
		}

		if err := CheckConflicts(satpoints, selectionReq); err != nil {
			return nil, err
		}
	}

	xOnlyPubKey := req.InternalKey.PubKey().SerializeCompressed()[1:]
	checksigPrefix, err := txscript.NewScriptBuilder().AddData(xOnlyPubKey).AddOp(txscript.OP_CHECKSIG).Script()
	if err != nil {
		return nil, err
	}

	prefixedScript, err := inscriptions.AppendBatchRevealScript(req.Inscriptions, checksigPrefix)
	if err != nil {
		return nil, fmt.Errorf("building reveal envelope: %w", err)
	}

	commitment, err := taproot.Derive(req.InternalKey, prefixedScript, req.ChainParams)
	if err != nil {
		return nil, fmt.Errorf("deriving commitment: %w", err)
	}

	hasFeeUTXOs := len(req.FeeUTXOs) > 0

	commitInputIndex := 0
	if req.Parent != nil {
		commitInputIndex = 1
	}

	outputs, locations, err := PlanOutputs(req.Mode, idsOf(req.Inscriptions), req.Destinations, req.Postage, req.Parent)
	if err != nil {
		return nil, err
	}

	log.Debugf("planned %d reveal outputs for %d inscriptions", len(outputs), len(req.Inscriptions))

	postageTotal := totalPostage(outputs, req.Parent != nil)

	changeOutputIndex := -1
	if req.ExistingCommit != nil {
		if req.CommitmentOutput == nil || req.CommitChangeAddress == nil {
			return nil, &PreconditionError{Cause: ErrCommitmentReuseRequiresChange}
		}

		changeScript, err := mustScriptErr(req.CommitChangeAddress)
		if err != nil {
			return nil, err
		}

		outputs = append(outputs, wire.NewTxOut(0, changeScript))
		changeOutputIndex = len(outputs) - 1
	}

	commitOutpoint := wire.OutPoint{}
	if req.ExistingCommit != nil {
		commitOutpoint = *req.ExistingCommit
	}

	skeletonInputs := make([]wire.OutPoint, 0, 2)
	if req.Parent != nil {
		skeletonInputs = append(skeletonInputs, req.Parent.Location.Outpoint)
	}
	skeletonInputs = append(skeletonInputs, commitOutpoint)

	skeleton := BuildRevealSkeleton(skeletonInputs, outputs)

	revealVSize := RevealVirtualSize(skeleton, commitInputIndex, prefixedScript, commitment.ControlBlock)

	var revealFee, commitFee btcutil.Amount
	if hasFeeUTXOs {
		var total btcutil.Amount
		for _, u := range req.FeeUTXOs {
			total += u.Value
		}

		commitVSize, needsCommitSize, err := resolveCommitVSize(ctx, req, commitment.Address)
		if err != nil {
			return nil, err
		}

		if needsCommitSize != nil {
			return &Outcome{
				NeedsCommitSize: needsCommitSize,
				Message:         "commit vsize required: sign the dummy commit and retry with commit_vsize set",
			}, nil
		}

		solution := ResolveFeeUTXOSplit(total, revealVSize, commitVSize)
		revealFee, commitFee = solution.RevealFee, solution.CommitFee
	} else {
		revealFee = FeeForRate(revealVSize, req.RevealFeeRate)
	}

	revealFeeAndPostage := int64(revealFee) + postageTotal

	target := CommitTarget(req.CommitOnly, hasFeeUTXOs, revealFeeAndPostage)

	var commit *wire.MsgTx
	var commitSelected []WalletUTXO
	if req.ExistingCommit == nil {
		commit, commitSelected, err = buildCommit(req, commitment.Address, target)
		if err != nil {
			return nil, err
		}

		commitOutpoint = wire.OutPoint{Hash: commit.TxHash(), Index: 0}
		skeleton.TxIn[commitInputIndex].PreviousOutPoint = commitOutpoint
	}

	var commitValue btcutil.Amount
	switch {
	case commit != nil:
		commitValue = btcutil.Amount(commit.TxOut[0].Value)
	case req.CommitmentOutput != nil:
		commitValue = btcutil.Amount(req.CommitmentOutput.Value)
	}

	commitScript, err := mustScriptErr(commitment.Address)
	if err != nil {
		return nil, err
	}

	if dust := dustThreshold(commitScript); commitValue < dust {
		return nil, &DustError{Value: commitValue, Dust: dust}
	}

	if changeOutputIndex >= 0 {
		changeValue := int64(req.RevealInputValue) + req.CommitmentOutput.Value - postageTotal - int64(revealFee)
		changeScript := outputs[changeOutputIndex].PkScript

		if dust := dustThreshold(changeScript); changeValue < int64(dust) {
			return nil, &DustError{Value: btcutil.Amount(changeValue), Dust: dust}
		}

		outputs[changeOutputIndex].Value = changeValue
	}

	if !req.NoLimit {
		// revealVSize includes the witness; the limit is a multiple of 4, so
		// vsize·4 exceeds it exactly when the true weight does.
		if weight := revealVSize * witnessScaleFactor; weight > standardWeightLimit {
			return nil, &WeightError{Weight: weight, Max: standardWeightLimit}
		}
	}

	if req.DryRun {
		return &Outcome{
			Commit:       commit,
			Reveal:       skeleton,
			Parent:       parentLocation(req.Parent),
			Inscriptions: locations,
			TotalFees:    commitFee + revealFee,
			Message:      "dry run: transactions were not signed or broadcast",
		}, nil
	}

	if req.CommitOnly {
		return finishCommitOnly(ctx, req, commit, commitment, commitFee)
	}

	prevouts := make([]*wire.TxOut, 0, 2)
	if req.Parent != nil {
		parentPrevOut := req.Parent.PrevOutput
		prevouts = append(prevouts, &parentPrevOut)
	}
	prevouts = append(prevouts, &wire.TxOut{Value: int64(commitValue), PkScript: commitScript})

	if err := SignReveal(skeleton, commitInputIndex, prevouts, prefixedScript, commitment.ControlBlock, req.InternalKey); err != nil {
		return nil, &SigningError{Stage: "reveal", Cause: err}
	}

	recoveryKey := commitment.RecoveryPrivateKey(req.InternalKey)
	recoveryWIF, err := btcutil.NewWIF(recoveryKey, req.ChainParams, true)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Commit:             commit,
		Reveal:             skeleton,
		RecoveryWIF:        recoveryWIF.String(),
		RecoveryDescriptor: RecoveryDescriptor(recoveryWIF.String()),
		Parent:             parentLocation(req.Parent),
		Inscriptions:       locations,
		TotalFees:          commitFee + revealFee,
	}

	if req.NoWallet {
		return finishNoWallet(req, outcome, skeleton, commit, commitSelected, commitOutpoint, commitInputIndex, prevouts)
	}

	if req.NoBroadcast || req.Wallet == nil {
		outcome.Message = "built but not broadcast"

		return outcome, nil
	}

	if err := req.Wallet.ImportDescriptor(ctx, outcome.RecoveryDescriptor, 0); err != nil {
		log.Warnf("importing recovery descriptor failed: %s", err)
	}

	commitTxID, err := req.Wallet.Broadcast(ctx, commit)
	if err != nil {
		return nil, fmt.Errorf("broadcasting commit: %w", err)
	}

	if _, err := req.Wallet.Broadcast(ctx, skeleton); err != nil {
		return nil, &PartialBroadcastError{CommitTxID: commitTxID, Cause: err}
	}

	outcome.Message = "commit and reveal broadcast"

	return outcome, nil
}

// finishCommitOnly implements §4.7's commit_only dispatch: the reveal is
// never signed or broadcast; only the commit (and the recovery WIF needed
// to later spend it) is surfaced.
func finishCommitOnly(ctx context.Context, req Request, commit *wire.MsgTx, commitment *taproot.Commitment, commitFee btcutil.Amount) (*Outcome, error) {
	recoveryKey := commitment.RecoveryPrivateKey(req.InternalKey)
	recoveryWIF, err := btcutil.NewWIF(recoveryKey, req.ChainParams, true)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Commit:             commit,
		RecoveryWIF:        recoveryWIF.String(),
		RecoveryDescriptor: RecoveryDescriptor(recoveryWIF.String()),
		Parent:             parentLocation(req.Parent),
		TotalFees:          commitFee,
		Message:            "commit built but not broadcast (commit_only)",
	}

	if req.NoWallet || req.NoBroadcast || req.Wallet == nil {
		return outcome, nil
	}

	if err := req.Wallet.ImportDescriptor(ctx, outcome.RecoveryDescriptor, 0); err != nil {
		log.Warnf("importing recovery descriptor failed: %s", err)
	}

	commitTxID, err := req.Wallet.Broadcast(ctx, commit)
	if err != nil {
		return nil, fmt.Errorf("broadcasting commit: %w", err)
	}

	outcome.Message = fmt.Sprintf("commit %s broadcast (commit_only)", commitTxID)

	return outcome, nil
}

// finishNoWallet implements §4.7's no_wallet dispatch: the commit and
// reveal are returned as hex/PSBT for external signing rather than
// broadcast. Exactly one reveal input must spend the commit output.
func finishNoWallet(req Request, outcome *Outcome, skeleton, commit *wire.MsgTx, commitSelected []WalletUTXO, commitOutpoint wire.OutPoint, commitInputIndex int, prevouts []*wire.TxOut) (*Outcome, error) {
	commitInputCount := 0
	for _, in := range skeleton.TxIn {
		if in.PreviousOutPoint == commitOutpoint {
			commitInputCount++
		}
	}

	if commitInputCount != 1 {
		return nil, &PreconditionError{Cause: ErrExactlyOneCommitInput}
	}

	if commit != nil {
		commitHex, err := serializeTxHex(commit)
		if err != nil {
			return nil, err
		}
		outcome.CommitHex = commitHex

		commitPSBT, err := commitPSBTBase64(commit, commitSelected)
		if err != nil {
			return nil, err
		}
		outcome.CommitPSBT = commitPSBT
	}

	if req.RevealPSBT != "" {
		if err := mergeRevealPSBT(skeleton, commitInputIndex, req.RevealPSBT); err != nil {
			return nil, err
		}
	} else {
		blankPSBT, err := blankRevealPSBTBase64(skeleton, prevouts)
		if err != nil {
			return nil, err
		}
		outcome.RevealPSBT = blankPSBT
	}

	revealHex, err := serializeTxHex(skeleton)
	if err != nil {
		return nil, err
	}
	outcome.RevealHex = revealHex

	outcome.Message = "built for external signing (no_wallet)"

	return outcome, nil
}

func validatePreconditions(req Request) error {
	if len(req.FeeUTXOs) > 0 {
		if !InscribeOnSpecificUTXOs(req.Entries) {
			return &PreconditionError{Cause: ErrFeeUtxosRequireSpecificUTXOs}
		}

		if req.CommitFeeRate != 0 || req.RevealFeeRate != 0 {
			return &PreconditionError{Cause: ErrFeeUtxosRequireZeroRates}
		}
	}

	for _, insc := range req.Inscriptions {
		if req.Parent != nil {
			coherent := false
			for _, p := range insc.Parents {
				if p.TxID.IsEqual(req.Parent.ID.TxID) && p.Index == req.Parent.ID.Index {
					coherent = true

					break
				}
			}

			if !coherent && len(insc.Parents) > 0 {
				return &PreconditionError{Cause: ErrParentIncoherent}
			}
		}
	}

	return nil
}

func buildCommit(req Request, commitAddress btcutil.Address, target Target) (*wire.MsgTx, []WalletUTXO, error) {
	utxos := req.FeeUTXOs
	changeAddress, err := derivedChangeAddress(req)
	if err != nil {
		return nil, nil, err
	}

	builder := NewTransactionBuilder(changeAddress)
	if target.IsChangeIsFee() {
		// fee_utxos dedicates its whole utxo set to funding the pair, so
		// every one of them must land in the commit tx, not just however
		// many greedy selection would otherwise pick.
		builder.MustInclude = make([]wire.OutPoint, len(utxos))
		for i, u := range utxos {
			builder.MustInclude[i] = u.Outpoint
		}
	}

	selected, _, change, err := builder.Select(utxos, target)
	if err != nil {
		return nil, nil, &WalletInsufficientError{}
	}

	tx := wire.NewMsgTx(2)
	for _, u := range selected {
		tx.AddTxIn(&wire.TxIn{PreviousOutPoint: u.Outpoint})
	}

	commitScript, err := mustScriptErr(commitAddress)
	if err != nil {
		return nil, nil, err
	}

	tx.AddTxOut(wire.NewTxOut(target.Amount().Int64(), commitScript))

	if target.IsValue() && change > 0 {
		changeScript, err := mustScriptErr(changeAddress)
		if err != nil {
			return nil, nil, err
		}

		tx.AddTxOut(wire.NewTxOut(int64(change), changeScript))
	}

	return tx, selected, nil
}

// resolveCommitVSize implements §4.5 step 2a: build a dummy commit that
// forces in every fee UTXO and lands on Target::NoChange(0), then measure
// its real vsize once signed. If no wallet is available and the caller has
// not already supplied CommitVSize, the dummy commit is returned as a PSBT
// for the caller to sign and measure out-of-band.
func resolveCommitVSize(ctx context.Context, req Request, commitAddress btcutil.Address) (vsize int, needsCommitSize []byte, err error) {
	if req.CommitVSize != nil {
		return *req.CommitVSize, nil, nil
	}

	outpoints := make([]wire.OutPoint, len(req.FeeUTXOs))
	for i, u := range req.FeeUTXOs {
		outpoints[i] = u.Outpoint
	}

	builder := &TransactionBuilder{MustInclude: outpoints}
	selected, total, _, err := builder.Select(req.FeeUTXOs, TargetNoChange(big.NewInt(0)))
	if err != nil {
		return 0, nil, &WalletInsufficientError{}
	}

	commitScript, err := mustScriptErr(commitAddress)
	if err != nil {
		return 0, nil, err
	}

	dummy := wire.NewMsgTx(2)
	for _, u := range selected {
		dummy.AddTxIn(&wire.TxIn{PreviousOutPoint: u.Outpoint})
	}
	dummy.AddTxOut(wire.NewTxOut(int64(total), commitScript))

	if req.Wallet != nil {
		signed, complete, err := req.Wallet.SignRawTransaction(ctx, dummy)
		if err != nil {
			return 0, nil, &SigningError{Stage: "dummy commit", Cause: err}
		}

		if !complete {
			return 0, nil, &SigningError{Stage: "dummy commit", Cause: ErrDummyCommitIncomplete}
		}

		return transactionVirtualSize(signed), nil, nil
	}

	dummyPSBT, err := commitPSBTBase64(dummy, selected)
	if err != nil {
		return 0, nil, err
	}

	return 0, []byte(dummyPSBT), nil
}

// cardinalScanPool returns the UTXOs SelectSatpoints's default scan should
// consider: the caller's pre-selected fee_utxos when that feature is in
// play, otherwise the wallet's own spendable outputs. Specific-utxo and
// explicit-satpoint selection never consult this pool, so it is skipped
// in both cases to avoid an unnecessary ListUnspent round trip.
func cardinalScanPool(ctx context.Context, req Request) ([]WalletUTXO, error) {
	if len(req.FeeUTXOs) > 0 {
		return req.FeeUTXOs, nil
	}

	if req.Satpoint != nil || InscribeOnSpecificUTXOs(req.Entries) || req.Wallet == nil {
		return nil, nil
	}

	utxos, err := req.Wallet.ListUnspent(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing wallet utxos: %w", err)
	}

	return utxos, nil
}

func derivedChangeAddress(req Request) (btcutil.Address, error) {
	if req.Wallet == nil {
		return nil, &WalletInsufficientError{}
	}

	return req.Wallet.ChangeAddress(context.Background())
}

// totalPostage sums output values that represent inscription postage: the
// prepended parent output, when present, is carried-over value rather than
// new postage and is excluded.
func totalPostage(outputs []*wire.TxOut, parentPresent bool) int64 {
	start := 0
	if parentPresent {
		start = 1
	}

	var total int64
	for _, o := range outputs[start:] {
		total += o.Value
	}

	return total
}

func idsOf(inscriptionsList []*inscriptions.Inscription) []inscriptions.ID {
	ids := make([]inscriptions.ID, len(inscriptionsList))
	for i, insc := range inscriptionsList {
		ids[i] = insc.ID
	}

	return ids
}

func parentLocation(parent *ParentInfo) *InscriptionLocation {
	if parent == nil {
		return nil
	}

	return &InscriptionLocation{ID: parent.ID, Location: parent.Location}
}

func mustScriptErr(addr btcutil.Address) ([]byte, error) {
	return txscript.PayToAddrScript(addr)
}
