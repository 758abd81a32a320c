package domain

import (
	"time"
)

// PersonalToken is a pre-provisioned credential bound to a principal and fixed scopes.
// Its id doubles as the id of the personal access token granted from it. Only
// IDHash is stored; the id is shown once, on creation.
type PersonalToken struct {
	ID          string
	IDHash      string
	Name        string
	PrincipalID string
	Scopes      []string
	CreatedAt   time.Time
}

// CreatePersonalTokenInput contains the parameters for provisioning a personal token.
type CreatePersonalTokenInput struct {
	Name        string
	PrincipalID string
	Scopes      []string
}
