package fingerprint

import (
	"crypto/md5" // nolint:gosec
	"encoding/hex"
	"fmt"

	"github.com/wkalt/ros2dyn/resolver"
)

/*
Package fingerprint computes message definition fingerprints: the MD5 digest
of a graph's canonical definition text.

No normalization is applied. Definitions that differ only in comments or
whitespace produce different fingerprints. MD5 is used for compatibility
with existing ROS tooling, not for its cryptographic properties.
*/

////////////////////////////////////////////////////////////////////////////////

// Fingerprint is a 128-bit definition digest.
type Fingerprint [md5.Size]byte

// String returns the fingerprint as lowercase hex.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Hash returns the digest of the supplied canonical text.
func Hash(canonical string) Fingerprint {
	return md5.Sum([]byte(canonical)) // nolint:gosec
}

// Of returns the fingerprint of a resolved graph.
func Of(graph *resolver.Graph) Fingerprint {
	return Hash(graph.CanonicalText())
}

// Parse decodes a hex fingerprint.
func Parse(s string) (Fingerprint, error) {
	var f Fingerprint
	b, err := hex.DecodeString(s)
	if err != nil {
		return f, fmt.Errorf("invalid fingerprint %q: %w", s, err)
	}
	if len(b) != len(f) {
		return f, fmt.Errorf("invalid fingerprint %q: expected %d bytes, got %d", s, len(f), len(b))
	}
	copy(f[:], b)
	return f, nil
}
