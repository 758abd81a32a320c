// Package usecase implements the OAuth token engine and the client and personal token
// directories it relies on.
package usecase

import (
	"context"

	auditDomain "github.com/allisson/casoauth/internal/audit/domain"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
)

// AuditRecorder receives one entry per grant, revocation and expiry collection.
type AuditRecorder interface {
	Record(ctx context.Context, entry *auditDomain.Entry) error
}

// TokenRepository persists token records separately from their tickets.
// Implementations must support transaction-aware operations via context propagation.
//
// Records are keyed by oauthDomain.HashTokenID of the bearer id; the id itself is never
// written. Get restores ID from its argument while the List methods return IDHash only.
type TokenRepository interface {
	// Create stores a new token. Returns ErrTokenAlreadyExists if the id is taken.
	Create(ctx context.Context, token *oauthDomain.Token) error

	// Get retrieves a token by the digest of tokenID. Returns ErrTokenNotFound if not found.
	Get(ctx context.Context, tokenID string) (*oauthDomain.Token, error)

	// DeleteByTicketID removes every token anchored to the ticket and returns how many were removed.
	DeleteByTicketID(ctx context.Context, ticketID string) (int64, error)

	// ListByClient returns every token issued to the client, regardless of principal.
	ListByClient(ctx context.Context, clientID string) ([]*oauthDomain.Token, error)

	// ListByClientPrincipal returns every token issued to the client for the principal.
	ListByClientPrincipal(ctx context.Context, clientID, principalID string) ([]*oauthDomain.Token, error)

	// ListByPrincipal returns every token issued for the principal.
	ListByPrincipal(ctx context.Context, principalID string) ([]*oauthDomain.Token, error)

	// CountPrincipalsByClient counts distinct principals holding refresh or access tokens of the client.
	CountPrincipalsByClient(ctx context.Context, clientID string) (int64, error)
}

// ClientRepository defines persistence operations for OAuth clients.
type ClientRepository interface {
	// Create stores a new client. Returns ErrClientAlreadyExists if the id is taken.
	Create(ctx context.Context, client *oauthDomain.Client) error

	// Get retrieves a client by id. Returns ErrClientNotFound if not found.
	Get(ctx context.Context, clientID string) (*oauthDomain.Client, error)
}

// PersonalTokenRepository defines persistence operations for pre-provisioned personal tokens.
type PersonalTokenRepository interface {
	// Create stores a new personal token.
	Create(ctx context.Context, personalToken *oauthDomain.PersonalToken) error

	// Get retrieves a personal token by the digest of its id. Returns ErrPersonalTokenNotFound if not found.
	Get(ctx context.Context, personalTokenID string) (*oauthDomain.PersonalToken, error)
}

// TokenUseCase is the token engine. It binds every token to a ticket and owns the
// grant, revocation and lookup state machine.
type TokenUseCase interface {
	// GrantAuthorizationCode mints a service ticket for the redirect URI from the user's
	// live grantor ticket and wraps it in an authorization code.
	GrantAuthorizationCode(
		ctx context.Context,
		input *oauthDomain.GrantAuthorizationCodeInput,
	) (*oauthDomain.Token, error)

	// GrantOfflineRefreshToken redeems an offline authorization code for a refresh token
	// anchored to a new grantor ticket. The code can be redeemed only once.
	GrantOfflineRefreshToken(
		ctx context.Context,
		code *oauthDomain.Token,
		redirectURI string,
	) (*oauthDomain.Token, error)

	// GrantOnlineAccessToken redeems an online authorization code for an access token
	// anchored to a new grantor ticket. The code can be redeemed only once.
	GrantOnlineAccessToken(ctx context.Context, code *oauthDomain.Token) (*oauthDomain.Token, error)

	// GrantOfflineAccessToken mints a new offline access token from a live refresh token.
	// The refresh token stays reusable.
	GrantOfflineAccessToken(ctx context.Context, refreshToken *oauthDomain.Token) (*oauthDomain.Token, error)

	// GrantCASAccessToken wraps an existing grantor ticket after a native service validation.
	GrantCASAccessToken(
		ctx context.Context,
		grantorTicket *ticketDomain.Ticket,
		service string,
	) (*oauthDomain.Token, error)

	// GrantPersonalAccessToken mints an access token whose id is the personal token id.
	GrantPersonalAccessToken(
		ctx context.Context,
		personalToken *oauthDomain.PersonalToken,
	) (*oauthDomain.Token, error)

	// RevokeToken deletes the backing ticket of the token and reports whether it existed.
	RevokeToken(ctx context.Context, token *oauthDomain.Token) (bool, error)

	// RevokeClientTokens revokes every refresh and access token of the client after
	// verifying its secret. Returns false without revoking anything on bad credentials.
	RevokeClientTokens(ctx context.Context, clientID, clientSecret string) (bool, error)

	// RevokeClientPrincipalTokens revokes the refresh tokens and online access tokens of
	// the (client, principal) pair behind the access token.
	RevokeClientPrincipalTokens(ctx context.Context, accessToken *oauthDomain.Token) (bool, error)

	// GetToken returns a live token, inferring its type from the id prefix.
	GetToken(ctx context.Context, tokenID string) (*oauthDomain.Token, error)

	// GetTokenOfType returns a live token of the given type. Expired tokens are collected
	// and reported as ErrInvalidToken.
	GetTokenOfType(
		ctx context.Context,
		tokenID string,
		tokenType oauthDomain.TokenType,
	) (*oauthDomain.Token, error)

	// GetRefreshToken returns a live refresh token of the (client, principal) pair.
	// The token comes from a list query and carries IDHash but no ID.
	GetRefreshToken(ctx context.Context, clientID, principalID string) (*oauthDomain.Token, error)

	// IsAccessToken reports whether the id belongs to an access token.
	IsAccessToken(tokenID string) bool

	// IsRefreshToken reports whether the id belongs to a refresh token.
	IsRefreshToken(tokenID string) bool

	// GetScopes resolves requested scope names, silently dropping unknown names, and
	// always adds the default scopes.
	GetScopes(names []string) map[string]oauthDomain.Scope

	// GetDefaultScope returns the scopes granted on every request.
	GetDefaultScope() map[string]oauthDomain.Scope

	// GetClientMetadata authenticates the client and returns its metadata with the
	// number of distinct principals that authorized it.
	GetClientMetadata(ctx context.Context, clientID, clientSecret string) (*oauthDomain.ClientMetadata, error)

	// GetPrincipalMetadata lists the clients the principal behind the access token has
	// authorized, with the union of scopes granted to each.
	GetPrincipalMetadata(
		ctx context.Context,
		accessToken *oauthDomain.Token,
	) (map[string]*oauthDomain.PrincipalClientMetadata, error)
}

// ClientUseCase defines operations on the client directory.
type ClientUseCase interface {
	// Create registers a client and returns its plain secret once.
	Create(ctx context.Context, input *oauthDomain.CreateClientInput) (*oauthDomain.CreateClientOutput, error)

	// Get retrieves a client by id.
	Get(ctx context.Context, clientID string) (*oauthDomain.Client, error)

	// Authenticate verifies the client secret. Unknown clients and wrong secrets both
	// return ErrUnauthorizedGrant.
	Authenticate(ctx context.Context, clientID, clientSecret string) (*oauthDomain.Client, error)
}

// PersonalTokenUseCase defines operations on pre-provisioned personal tokens.
type PersonalTokenUseCase interface {
	// Create provisions a personal token for a principal. Unknown scopes are dropped.
	Create(ctx context.Context, input *oauthDomain.CreatePersonalTokenInput) (*oauthDomain.PersonalToken, error)

	// Get retrieves a personal token by id.
	Get(ctx context.Context, personalTokenID string) (*oauthDomain.PersonalToken, error)
}
