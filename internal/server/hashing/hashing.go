// Package hashing implements the delete-password scheme of the metadata
// store: PBKDF2-HMAC-SHA256 over a random 16-byte salt, 100000 iterations,
// stored as base64(salt || hash). The stored format is compatible with rows
// written by earlier deployments of the endpoint.
package hashing

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/dmitrijs2005/imagedrive/internal/common"
)

const (
	saltSize   = 16
	keySize    = 32
	iterations = 100000
)

// Hash derives the stored form of a delete password.
func Hash(password string) string {
	salt := common.GenerateRandByteArray(saltSize)
	key := pbkdf2.Key([]byte(password), salt, iterations, keySize, sha256.New)
	return base64.StdEncoding.EncodeToString(append(salt, key...))
}

// Verify reports whether candidate matches the stored hash. The comparison
// is constant time. A malformed stored value is an error, not a mismatch.
func Verify(stored, candidate string) (bool, error) {
	decoded, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return false, fmt.Errorf("malformed stored password: %w", err)
	}
	if len(decoded) <= saltSize {
		return false, fmt.Errorf("malformed stored password: %d bytes", len(decoded))
	}

	salt, want := decoded[:saltSize], decoded[saltSize:]
	got := pbkdf2.Key([]byte(candidate), salt, iterations, len(want), sha256.New)

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}
