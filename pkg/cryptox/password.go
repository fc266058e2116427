package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Hashing is deliberately expensive; callers should
// keep it off latency-sensitive paths.
const (
	saltLength  = 16
	iterations  = 3
	memory      = 64 * 1024 // KiB
	parallelism = 2
	keyLength   = 32
)

// ErrMismatch is returned when a password does not match its hash.
var ErrMismatch = errors.New("cryptox: password does not match")

// HashPassword generates a PHC-format Argon2id hash string that embeds the
// salt and cost parameters, so verification is self-describing.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword compares a plaintext password against a PHC-style Argon2id
// hash in constant time. Returns ErrMismatch when they disagree.
func VerifyPassword(password, encodedHash string) error {
	// Expected shape: ["", "argon2id", "v=19", "m=X,t=Y,p=Z", salt, hash]
	parts := splitDollar(encodedHash)
	if len(parts) != 6 {
		return errors.New("cryptox: invalid hash format")
	}
	if parts[1] != "argon2id" || parts[2] != "v=19" {
		return errors.New("cryptox: unsupported hash format")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("cryptox: parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("cryptox: decode salt: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("cryptox: decode hash: %w", err)
	}

	computed := argon2.IDKey([]byte(password), salt, iters, mem, par, uint32(len(expected)))

	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return ErrMismatch
}

func splitDollar(s string) []string {
	parts := make([]string, 0, 6)
	start := 0
	for i := range len(s) {
		if s[i] == '$' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
