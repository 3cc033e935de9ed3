package scripting

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Fingerprint is a cheap-to-compare digest of a script's content plus the
// environment inputs that went into resolving its configuration. Two equal
// fingerprints mean the cached configuration is still valid.
type Fingerprint string

// ComputeFingerprint derives a fingerprint from file content and environment
// inputs. The inputs are sorted so map iteration order never changes the
// result.
func ComputeFingerprint(content []byte, inputs map[string]string) Fingerprint {
	h := sha256.New()
	h.Write(content)

	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(inputs[k]))
	}

	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}
