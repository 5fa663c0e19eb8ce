package pics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Fingerprint is the SHA-256 digest of a file's complete byte content.
// Two files with equal fingerprints are treated as the same content.
type Fingerprint [sha256.Size]byte

// ComputeFingerprint streams r through SHA-256 and returns the digest
// along with the number of bytes read.
func ComputeFingerprint(r io.Reader) (Fingerprint, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return Fingerprint{}, n, fmt.Errorf("hashing content: %w", err)
	}

	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp, n, nil
}

// String returns the fingerprint as 64 lowercase hex digits.
func (fp Fingerprint) String() string {
	return hex.EncodeToString(fp[:])
}

// ParseFingerprint parses a hex-encoded fingerprint.
// An optional "0x" prefix is accepted, and fewer than 64 digits are
// left-padded with zeros, so ledgers that drop leading zeros still parse.
func ParseFingerprint(s string) (Fingerprint, error) {
	digits := strings.TrimSpace(s)
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
	}
	if digits == "" {
		return Fingerprint{}, fmt.Errorf("empty fingerprint: %q", s)
	}
	if len(digits) > 2*sha256.Size {
		return Fingerprint{}, fmt.Errorf("fingerprint too long (%d digits): %q", len(digits), s)
	}
	digits = strings.Repeat("0", 2*sha256.Size-len(digits)) + digits

	raw, err := hex.DecodeString(digits)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("parsing fingerprint %q: %w", s, err)
	}

	var fp Fingerprint
	copy(fp[:], raw)
	return fp, nil
}
