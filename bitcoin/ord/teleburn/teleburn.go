// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package teleburn derives the EIP-55 checksummed Ethereum-shaped address
// an inscription "teleburns" to: the low 20 bytes of the Keccak-256 digest
// of the inscription id's data-push encoding. No private key can produce
// an address derived this way, so sending an inscription there is
// provably unspendable.
package teleburn

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"ordforge/bitcoin/ord/inscriptions"
)

// Address computes the checksummed teleburn address for id.
func Address(id inscriptions.ID) (string, error) {
	digest := keccak256(id.IntoDataPush())

	return checksumAddress(digest[len(digest)-20:]), nil
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)

	return h.Sum(nil)
}

// checksumAddress renders addr as a "0x"-prefixed EIP-55 checksummed hex
// string: a character is uppercased when the corresponding nibble of
// keccak256(lowercase hex) is 8 or greater.
func checksumAddress(addr []byte) string {
	lower := hex.EncodeToString(addr)
	hash := keccak256([]byte(lower))

	out := make([]byte, len(lower))
	for i, c := range []byte(lower) {
		if c >= '0' && c <= '9' {
			out[i] = c
			continue
		}

		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}

		if nibble >= 8 {
			out[i] = c - ('a' - 'A')
		} else {
			out[i] = c
		}
	}

	return "0x" + string(out)
}
