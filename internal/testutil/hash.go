package testutil

import (
	"crypto/sha256"

	"copypics/internal/pics"
)

// FingerprintOf returns the fingerprint of data, computed independently of
// pics.ComputeFingerprint.
func FingerprintOf(data []byte) pics.Fingerprint {
	return pics.Fingerprint(sha256.Sum256(data))
}
