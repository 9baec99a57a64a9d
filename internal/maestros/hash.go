package maestros

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// Sentinel hash values. Neither can ever collide with a real hex digest, so
// a missing or unreadable file always forces a lookup rebuild instead of
// serving stale cached data.
const (
	HashFileNotFound = "FILE_NOT_FOUND"
	HashError        = "ERROR_HASH"
)

// FileHash returns the hex SHA-256 digest of the file contents. A missing
// file yields HashFileNotFound and any read failure yields HashError; the
// function never returns an error.
func FileHash(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return HashFileNotFound
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return HashError
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// IsSentinelHash reports whether h is one of the distinguished non-digest
// values produced by FileHash.
func IsSentinelHash(h string) bool {
	return h == HashFileNotFound || h == HashError
}
