package bundle

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint is the hex BLAKE3-256 digest of a member's raw bytes, or ""
// when the member is absent.
func (b *Bundle) Fingerprint(m Member) string {
	if !b.Has(m) {
		return ""
	}
	sum := blake3.Sum256(b.data[m])
	return hex.EncodeToString(sum[:])
}
