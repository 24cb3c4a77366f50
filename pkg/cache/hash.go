package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey returns "{prefix}:{sha256 of the JSON encoding of v}". Map keys
// are sorted by encoding/json, so equal values give equal keys. A value
// that cannot be encoded yields the empty key, which callers must not cache
// under.
func hashKey(prefix string, v any) string {
	h := sha256.New()
	if err := json.NewEncoder(h).Encode(v); err != nil {
		return ""
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. File cache entries are named by it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
