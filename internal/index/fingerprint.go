package index

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/vsivadasan/bookscout/internal/roots"
)

// Fingerprint computes a stable hash over the scannable root paths in
// insertion order. Order is included because it determines scan order and
// therefore which root owns a file reachable from two overlapping roots.
func Fingerprint(rts []roots.SearchRoot) string {
	h := sha256.New()
	for _, r := range rts {
		h.Write([]byte(r.Path))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
