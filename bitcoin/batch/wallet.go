// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
)

// ChainClient is the surface the orchestrator needs from the backing
// chain node: UTXO enumeration, signing delegation, descriptor import
// (for the recovery key), and broadcast.
type ChainClient interface {
	ListUnspent(ctx context.Context) ([]WalletUTXO, error)
	SignRawTransaction(ctx context.Context, tx *wire.MsgTx) (*wire.MsgTx, bool, error)
	ImportDescriptor(ctx context.Context, descriptor string, timestampUnix int64) error
	Broadcast(ctx context.Context, tx *wire.MsgTx) (string, error)
	ChangeAddress(ctx context.Context) (btcutil.Address, error)
}

// RPCChainClient implements ChainClient against a bitcoind JSON-RPC node,
// following the teacher's rpcclient.Client wiring; requests with no typed
// method on rpcclient.Client (importdescriptors, the wallet-aware variant
// of signrawtransaction) go through RawRequest, matching how the teacher's
// reference repos reach methods rpcclient hasn't wrapped.
type RPCChainClient struct {
	client *rpcclient.Client
}

// NewRPCChainClient is a constructor for RPCChainClient.
func NewRPCChainClient(client *rpcclient.Client) *RPCChainClient {
	return &RPCChainClient{client: client}
}

// ListUnspent reports the wallet's spendable outputs.
func (c *RPCChainClient) ListUnspent(ctx context.Context) ([]WalletUTXO, error) {
	unspent, err := c.client.ListUnspent()
	if err != nil {
		return nil, fmt.Errorf("listunspent: %w", err)
	}

	utxos := make([]WalletUTXO, 0, len(unspent))
	for _, u := range unspent {
		txHash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			return nil, fmt.Errorf("parsing utxo txid %q: %w", u.TxID, err)
		}

		script, err := hex.DecodeString(u.ScriptPubKey)
		if err != nil {
			return nil, fmt.Errorf("decoding scriptPubKey for %s: %w", u.TxID, err)
		}

		amount, err := btcutil.NewAmount(u.Amount)
		if err != nil {
			return nil, err
		}

		utxos = append(utxos, WalletUTXO{
			Outpoint: wire.OutPoint{Hash: *txHash, Index: u.Vout},
			Value:    amount,
			Script:   script,
		})
	}

	return utxos, nil
}

// SignRawTransaction delegates signing of every input the wallet owns,
// returning the (possibly still partially unsigned) transaction and
// whether every input ended up signed.
func (c *RPCChainClient) SignRawTransaction(ctx context.Context, tx *wire.MsgTx) (*wire.MsgTx, bool, error) {
	raw, err := serializeTxHex(tx)
	if err != nil {
		return nil, false, err
	}

	params, err := json.Marshal(raw)
	if err != nil {
		return nil, false, err
	}

	response, err := c.client.RawRequest("signrawtransactionwithwallet", []json.RawMessage{params})
	if err != nil {
		return nil, false, fmt.Errorf("signrawtransactionwithwallet: %w", err)
	}

	var result struct {
		Hex      string `json:"hex"`
		Complete bool   `json:"complete"`
	}
	if err := json.Unmarshal(response, &result); err != nil {
		return nil, false, err
	}

	signed, err := deserializeTxHex(result.Hex)
	if err != nil {
		return nil, false, err
	}

	return signed, result.Complete, nil
}

// ImportDescriptor imports the recovery output descriptor into the wallet
// via the importdescriptors RPC, so that funds sent to the commit address
// remain spendable if the reveal transaction is ever lost. timestampUnix
// is the rescan start time; pass 0 to mean "now", matching bitcoind's
// own convention for this field.
func (c *RPCChainClient) ImportDescriptor(ctx context.Context, descriptor string, timestampUnix int64) error {
	var timestamp any = timestampUnix
	if timestampUnix == 0 {
		timestamp = "now"
	}

	request := []map[string]any{{
		"desc":      descriptor,
		"timestamp": timestamp,
		"internal":  true,
		"active":    false,
		"label":     "commit tx recovery key",
	}}

	params, err := json.Marshal([]any{request})
	if err != nil {
		return err
	}

	if _, err := c.client.RawRequest("importdescriptors", []json.RawMessage{params}); err != nil {
		return fmt.Errorf("importdescriptors: %w", err)
	}

	return nil
}

// Broadcast submits tx to the network and returns its txid.
func (c *RPCChainClient) Broadcast(ctx context.Context, tx *wire.MsgTx) (string, error) {
	hash, err := c.client.SendRawTransaction(tx, false)
	if err != nil {
		return "", err
	}

	return hash.String(), nil
}

// ChangeAddress requests a fresh change address from the wallet.
func (c *RPCChainClient) ChangeAddress(ctx context.Context) (btcutil.Address, error) {
	return c.client.GetRawChangeAddress("bech32m")
}

func serializeTxHex(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf.Bytes()), nil
}

func deserializeTxHex(rawHex string) (*wire.MsgTx, error) {
	raw, err := hex.DecodeString(rawHex)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(2)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, err
	}

	return tx, nil
}

// RecoveryDescriptor formats wif as a raw taproot output descriptor with
// its BIP-380 checksum, so it can be re-imported into a wallet to recover
// funds sent to the commit output if the reveal is never broadcast. wif
// already carries the tweaked output key (see Commitment.RecoveryPrivateKey),
// so it must be wrapped as rawtr(...) rather than tr(...): tr() would apply
// a second BIP-341 tweak on import and derive the wrong address.
func RecoveryDescriptor(wif string) string {
	return DescriptorChecksum(fmt.Sprintf("rawtr(%s)", wif))
}
