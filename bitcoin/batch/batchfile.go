// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Batchfile is the on-disk batch configuration: a shared mode and parent,
// plus the per-inscription Entries.
type Batchfile struct {
	Mode           Mode    `yaml:"mode"`
	Parent         string  `yaml:"parent,omitempty"`
	ParentSatpoint string  `yaml:"parent_satpoint,omitempty"`
	Postage        *uint64 `yaml:"postage,omitempty"`
	Sat            *uint64 `yaml:"sat,omitempty"`
	Reinscribe     bool    `yaml:"reinscribe,omitempty"`
	Fees           []string `yaml:"fees,omitempty"`

	Entries      []BatchEntry     `yaml:"-"`
	FeeOutpoints []wire.OutPoint  `yaml:"-"`
	RawEntries   []batchEntryYAML `yaml:"inscriptions"`
}

// batchEntryYAML is the wire shape of one YAML inscription entry: metadata
// is carried as arbitrary YAML and re-encoded to CBOR at load time, matching
// the convention that on-chain inscription metadata is CBOR regardless of
// how the operator authored it.
type batchEntryYAML struct {
	File         string `yaml:"file"`
	Destination  string `yaml:"destination,omitempty"`
	Metadata     any    `yaml:"metadata,omitempty"`
	Metaprotocol string `yaml:"metaprotocol,omitempty"`
	UTXO         string `yaml:"utxo,omitempty"`
}

// LoadBatchfile strictly decodes a YAML batch file: unknown fields are
// rejected rather than silently ignored, since a typo'd key here silently
// inscribing the wrong content is exactly the failure mode worth refusing.
func LoadBatchfile(data []byte) (*Batchfile, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var file Batchfile
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing batchfile: %w", err)
	}

	file.Entries = make([]BatchEntry, len(file.RawEntries))
	for i, raw := range file.RawEntries {
		entry := BatchEntry{
			File:         raw.File,
			Destination:  raw.Destination,
			MetadataJSON: raw.Metadata,
			Metaprotocol: raw.Metaprotocol,
		}

		if raw.Metadata != nil {
			encoded, err := cbor.Marshal(normalizeForCBOR(raw.Metadata))
			if err != nil {
				return nil, fmt.Errorf("encoding metadata for %q: %w", raw.File, err)
			}

			entry.Metadata = encoded
		}

		if raw.UTXO != "" {
			outpoint, err := parseOutpoint(raw.UTXO)
			if err != nil {
				return nil, fmt.Errorf("entry %q utxo: %w", raw.File, err)
			}

			entry.UTXO = &outpoint
		}

		file.Entries[i] = entry
	}

	file.FeeOutpoints = make([]wire.OutPoint, len(file.Fees))
	for i, raw := range file.Fees {
		outpoint, err := parseOutpoint(raw)
		if err != nil {
			return nil, fmt.Errorf("fees[%d]: %w", i, err)
		}

		file.FeeOutpoints[i] = outpoint
	}

	return &file, nil
}

// parseOutpoint parses the "txid:vout" shape batch files use for utxo and
// fees entries.
func parseOutpoint(s string) (wire.OutPoint, error) {
	txid, voutStr, found := strings.Cut(s, ":")
	if !found {
		return wire.OutPoint{}, fmt.Errorf("outpoint %q must be txid:vout", s)
	}

	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return wire.OutPoint{}, fmt.Errorf("outpoint %q: %w", s, err)
	}

	vout, err := strconv.ParseUint(voutStr, 10, 32)
	if err != nil {
		return wire.OutPoint{}, fmt.Errorf("outpoint %q: %w", s, err)
	}

	return wire.OutPoint{Hash: *hash, Index: uint32(vout)}, nil
}

// normalizeForCBOR copies the map[string]interface{} and []interface{}
// values YAML decoding produces, recursing into their elements; any other
// value, including a map with non-string keys, is returned unchanged.
func normalizeForCBOR(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = normalizeForCBOR(inner)
		}

		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = normalizeForCBOR(inner)
		}

		return out
	default:
		return val
	}
}
