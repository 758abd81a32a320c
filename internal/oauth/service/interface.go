// Package service provides technical services for the OAuth layer: client secret
// hashing and the scope catalog.
package service

import (
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
)

// SecretService defines operations for client secret generation and validation.
type SecretService interface {
	// GenerateSecret creates a new random secret and returns it with its hash.
	// The plain secret is shown once to the client administrator.
	GenerateSecret() (plainSecret string, hashedSecret string, error error)

	// HashSecret hashes a plain text secret.
	HashSecret(plainSecret string) (hashedSecret string, error error)

	// CompareSecret reports whether the plain secret matches the hash in constant time.
	CompareSecret(plainSecret string, hashedSecret string) bool
}

// ScopeCatalog resolves scope names to descriptors.
type ScopeCatalog interface {
	// Get returns the scope with the given name.
	Get(name string) (oauthDomain.Scope, bool)

	// Defaults returns the scopes granted on every request.
	Defaults() []oauthDomain.Scope

	// All returns every scope of the catalog sorted by name.
	All() []oauthDomain.Scope
}
