// Package secrets generates, hashes and checks OAuth client secrets.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "unique/pkg/domain-errors"
)

// Generate returns a 256-bit random secret, base64url encoded without padding.
// The same encoding is used for authorization code tokens.
func Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func Hash(secret string) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "secret cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "secret is too long")
		}
		return "", fmt.Errorf("could not hash secret: %w", err)
	}
	return string(hashed), nil
}

// Verify compares secret against a bcrypt hash in constant time. A mismatch
// is reported as invalid_client so callers can return it unchanged.
func Verify(secret, hash string) error {
	if secret == "" || hash == "" {
		return dErrors.New(dErrors.CodeInvalidClient, "client authentication failed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeInvalidClient, "client authentication failed")
		}
		return fmt.Errorf("could not verify secret: %w", err)
	}
	return nil
}
