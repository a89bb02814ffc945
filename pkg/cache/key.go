package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Key builds a stable cache key from a strategy name, a set of file content
// hashes (order-independent), the query text, and a pre-hashed options
// blob. Callers are responsible for hashing file contents and
// marshaling+hashing options before calling Key.
func Key(strategyName string, fileHashes []string, queryText string, optionsHash string) string {
	sorted := append([]string(nil), fileHashes...)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(strategyName))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(sorted, ",")))
	h.Write([]byte{0})
	h.Write([]byte(queryText))
	h.Write([]byte{0})
	h.Write([]byte(optionsHash))
	return hex.EncodeToString(h.Sum(nil))
}

// HashOptions is a small helper producing a stable digest of an options
// blob (already-serialized, e.g. canonical JSON) for use with Key.
func HashOptions(serialized string) string {
	sum := sha256.Sum256([]byte(serialized))
	return hex.EncodeToString(sum[:])
}
