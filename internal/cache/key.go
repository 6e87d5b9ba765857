package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// KeyFor returns the cache key of a resource URL. Surrounding whitespace is
// ignored so equivalent URLs share an entry.
func KeyFor(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return hex.EncodeToString(sum[:])
}
