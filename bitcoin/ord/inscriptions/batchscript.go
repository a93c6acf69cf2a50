// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package inscriptions

// AppendBatchRevealScript concatenates the envelopes of the provided
// inscriptions onto prefixScript (the pubkey-plus-OP_CHECKSIG script-path
// spend condition), producing the single reveal-leaf tapscript shared by a
// whole batch. Per-inscription destination offsets are expressed by the
// caller through each Inscription's Pointer field before this is called,
// not by this function itself.
func AppendBatchRevealScript(inscriptionsList []*Inscription, prefixScript []byte) ([]byte, error) {
	script := make([]byte, len(prefixScript))
	copy(script, prefixScript)

	for _, inscription := range inscriptionsList {
		encoded, err := inscription.IntoScript()
		if err != nil {
			return nil, err
		}

		script = append(script, encoded...)
	}

	return script, nil
}

// VBytesSizeOfBatch estimates the virtual size in bytes of the script-path
// spend of a reveal input whose witness carries the given batch's envelopes.
func VBytesSizeOfBatch(inscriptionsList []*Inscription) (int, error) {
	script, err := AppendBatchRevealScript(inscriptionsList, nil)
	if err != nil {
		return 0, err
	}

	// INFO: pubkey size [1 byte] + pubkey [32 bytes] + OP_CHECKSIG [1 byte] + batch script size [variable].
	bytesSize := len(script) + 34
	vBytesSize := bytesSize / 4
	if bytesSize%4 != 0 {
		vBytesSize++
	}

	return vBytesSize, nil
}
