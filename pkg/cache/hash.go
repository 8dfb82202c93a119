package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the content hash of a raw profile: the hex SHA-256 of its
// bytes. Sessions, trees and artifacts are all keyed from it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// TreeVariant hashes a profile hash together with the load options that
// change the parsed tree. The result is what [Keyer.TreeKey] expects.
func TreeVariant(profileHash, title string, sorted bool) string {
	return optionsHash(profileHash, title, sorted)
}

// optionsHash hashes the JSON encoding of parts. Option structs are plain
// data, so the encoding is stable and never fails.
func optionsHash(parts ...any) string {
	data, _ := json.Marshal(parts)
	return Hash(data)
}

// hashKey returns prefix:optionsHash(parts...).
func hashKey(prefix string, parts ...any) string {
	return prefix + ":" + optionsHash(parts...)
}
