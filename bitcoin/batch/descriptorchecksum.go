// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package batch

import "strings"

// Output descriptor checksum (BIP-380), lifted unchanged from the
// reference descriptor implementation: an 8-character base32-like suffix
// appended after '#' that a wallet uses to detect a mistyped descriptor
// before importing it.
var (
	descriptorInputCharset = "0123456789()[],'/*abcdefgh@:$%{}IJKLMNOPQRSTUVWXYZ" +
		"&+-.;<=>?!^_|~ijklmnopqrstuvwxyzABCDEFGH`#\"\\ "
	descriptorChecksumCharset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"
	descriptorGenerator       = []uint64{
		0xf5dee51989, 0xa9fdca3312, 0x1bab10e32d, 0x3706b1677a,
		0x644d626ffd,
	}
)

func descriptorSumPolymod(symbols []uint64) uint64 {
	chk := uint64(1)
	for _, value := range symbols {
		top := chk >> 35
		chk = (chk&0x7ffffffff)<<5 ^ value
		for i := 0; i < 5; i++ {
			if (top>>i)&1 != 0 {
				chk ^= descriptorGenerator[i]
			}
		}
	}

	return chk
}

func descriptorSumExpand(s string) []uint64 {
	var groups []uint64
	var symbols []uint64

	for _, c := range s {
		v := strings.IndexRune(descriptorInputCharset, c)
		if v < 0 {
			return nil
		}

		symbols = append(symbols, uint64(v&31))
		groups = append(groups, uint64(v>>5))
		if len(groups) == 3 {
			symbols = append(symbols, groups[0]*9+groups[1]*3+groups[2])
			groups = nil
		}
	}

	if len(groups) == 1 {
		symbols = append(symbols, groups[0])
	} else if len(groups) == 2 {
		symbols = append(symbols, groups[0]*3+groups[1])
	}

	return symbols
}

// DescriptorChecksum appends the BIP-380 checksum suffix to an output
// descriptor string.
func DescriptorChecksum(descriptor string) string {
	symbols := append(descriptorSumExpand(descriptor), 0, 0, 0, 0, 0, 0, 0, 0)
	checksum := descriptorSumPolymod(symbols) ^ 1

	var builder strings.Builder
	for i := 0; i < 8; i++ {
		builder.WriteByte(descriptorChecksumCharset[(checksum>>(5*(7-i)))&31])
	}

	return descriptor + "#" + builder.String()
}
