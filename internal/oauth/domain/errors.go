package domain

import (
	"github.com/allisson/casoauth/internal/errors"
)

// Token engine errors.
var (
	// ErrInvalidParameter indicates a required input is missing, blank or malformed.
	ErrInvalidParameter = errors.Wrap(errors.ErrInvalidInput, "invalid parameter")

	// ErrInvalidToken indicates no token record exists or its backing ticket has expired.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid or expired token")

	// ErrUnauthorizedGrant indicates client authentication failed or the ticket layer
	// refused to mint the backing ticket.
	ErrUnauthorizedGrant = errors.Wrap(errors.ErrForbidden, "unauthorized grant")

	// ErrInvalidGrant indicates an authorization code or refresh token that is expired,
	// already redeemed, or mismatched against the caller.
	ErrInvalidGrant = errors.Wrap(errors.ErrInvalidGrant, "invalid grant")
)

// Persistence errors.
var (
	// ErrTokenNotFound indicates a token record with the specified id was not found.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrTokenAlreadyExists indicates a token record with the same id already exists.
	ErrTokenAlreadyExists = errors.Wrap(errors.ErrConflict, "token already exists")

	// ErrClientNotFound indicates a client with the specified id was not found.
	ErrClientNotFound = errors.Wrap(errors.ErrNotFound, "client not found")

	// ErrClientAlreadyExists indicates a client with the same id already exists.
	ErrClientAlreadyExists = errors.Wrap(errors.ErrConflict, "client already exists")

	// ErrPersonalTokenNotFound indicates a personal token with the specified id was not found.
	ErrPersonalTokenNotFound = errors.Wrap(errors.ErrNotFound, "personal token not found")
)
