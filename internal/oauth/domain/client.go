package domain

import (
	"time"
)

// Client is a registered OAuth client. Secret holds the Argon2id hash.
type Client struct {
	ID          string
	Secret      string
	Name        string
	Description string
	RedirectURI string
	AutoApprove bool
	CreatedAt   time.Time
}

// CreateClientInput contains the parameters for registering a client.
// An empty ID lets the system assign one.
type CreateClientInput struct {
	ID          string
	Name        string
	Description string
	RedirectURI string
	AutoApprove bool
}

// CreateClientOutput contains the client id and the plain secret, returned only once.
type CreateClientOutput struct {
	ID          string
	PlainSecret string
}

// ClientMetadata is the administrative view of a client.
type ClientMetadata struct {
	ClientID       string `json:"client_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	RedirectURI    string `json:"redirect_uri"`
	AutoApprove    bool   `json:"auto_approve"`
	PrincipalCount int64  `json:"principal_count"`
}

// PrincipalClientMetadata describes one client a principal has authorized.
type PrincipalClientMetadata struct {
	ClientID    string   `json:"client_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Scopes      []string `json:"scopes"`
}
