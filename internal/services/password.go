package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	passwordIterations = 100_000
	passwordKeyLength  = 32
	passwordSaltBytes  = 16
)

// PasswordHasher derives PBKDF2-HMAC-SHA256 keys for stored passwords.
//
// The salt is passed to PBKDF2 as the bytes of its hex string, which is how
// existing rows in the users table were produced.
type PasswordHasher struct {
	iterations int
	random     io.Reader
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{
		iterations: passwordIterations,
		random:     rand.Reader,
	}
}

// NewSalt returns 128 random bits, hex-encoded.
func (h *PasswordHasher) NewSalt() (string, error) {
	buf := make([]byte, passwordSaltBytes)
	if _, err := io.ReadFull(h.random, buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Hash returns the hex-encoded derived key for password and salt.
func (h *PasswordHasher) Hash(password, salt string) string {
	return hex.EncodeToString(h.derive(password, salt))
}

// Verify reports whether password matches encodedHash. The comparison is constant-time.
func (h *PasswordHasher) Verify(password, salt, encodedHash string) bool {
	computed := h.derive(password, salt)
	expected, err := hex.DecodeString(encodedHash)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

func (h *PasswordHasher) derive(password, salt string) []byte {
	return pbkdf2.Key([]byte(password), []byte(salt), h.iterations, passwordKeyLength, sha256.New)
}
