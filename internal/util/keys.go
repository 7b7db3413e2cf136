package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ShortHash returns the first 16 hex chars of the SHA-256 of s.
func ShortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

// RedactKey keeps the first keep ':'-separated segments of a storage key and replaces
// the remainder with its short hash, e.g. "apikey:lookup:ab12:ff00" with keep=2 becomes
// "apikey:lookup:#<hash>". A key with no more than keep segments is hashed whole.
func RedactKey(key string, keep int) string {
	parts := strings.SplitN(key, ":", keep+1)
	if keep <= 0 || len(parts) <= keep {
		return "#" + ShortHash(key)
	}
	return strings.Join(parts[:keep], ":") + ":#" + ShortHash(parts[keep])
}
