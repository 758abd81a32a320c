package service

import (
	"crypto/rand"
	"encoding/base64"

	apperrors "github.com/allisson/casoauth/internal/errors"
)

// idEntropyBytes is the number of random bytes behind every generated id.
const idEntropyBytes = 32

type randomIDGenerator struct{}

// GenerateID creates prefix + base64url(32 random bytes) without padding.
func (g *randomIDGenerator) GenerateID(prefix string) (string, error) {
	randomBytes := make([]byte, idEntropyBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", apperrors.Wrap(err, "failed to generate random id")
	}
	return prefix + base64.RawURLEncoding.EncodeToString(randomBytes), nil
}

// NewIDGenerator creates an IDGenerator backed by crypto/rand.
func NewIDGenerator() IDGenerator {
	return &randomIDGenerator{}
}
