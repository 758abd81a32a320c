// Package domain defines the OAuth token model layered over SSO tickets.
//
// A Token never owns its ticket: it keeps the ticket id and reads its creation and
// expiry times through the ticket registry. A token is valid exactly as long as its
// backing ticket exists and has not expired.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// TokenType tags the three token kinds.
type TokenType string

const (
	TokenTypeAuthorizationCode TokenType = "authorization_code"
	TokenTypeRefresh           TokenType = "refresh_token"
	TokenTypeAccess            TokenType = "access_token"
)

// Token id prefixes. They identify the token type and are never reused.
const (
	AuthorizationCodePrefix = "OC-"
	RefreshTokenPrefix      = "RT-"
	AccessTokenPrefix       = "AT-"
)

// Prefix returns the id prefix for the token type.
func (t TokenType) Prefix() string {
	switch t {
	case TokenTypeAuthorizationCode:
		return AuthorizationCodePrefix
	case TokenTypeRefresh:
		return RefreshTokenPrefix
	case TokenTypeAccess:
		return AccessTokenPrefix
	default:
		return ""
	}
}

// TokenTypeFromID infers the token type from the id prefix.
func TokenTypeFromID(id string) (TokenType, bool) {
	switch {
	case strings.HasPrefix(id, AuthorizationCodePrefix):
		return TokenTypeAuthorizationCode, true
	case strings.HasPrefix(id, RefreshTokenPrefix):
		return TokenTypeRefresh, true
	case strings.HasPrefix(id, AccessTokenPrefix):
		return TokenTypeAccess, true
	default:
		return "", false
	}
}

// HashTokenID returns the hex sha256 digest of a bearer id. Stores key tokens and
// personal tokens by this digest and never persist the id itself.
func HashTokenID(id string) string {
	hash := sha256.Sum256([]byte(id))
	return hex.EncodeToString(hash[:])
}

// AccessVariant is the flavor of an access token.
//
// Grantor-ticket backed: online, personal, cas. Service-ticket backed: offline.
type AccessVariant string

const (
	AccessVariantOnline   AccessVariant = "online"
	AccessVariantOffline  AccessVariant = "offline"
	AccessVariantPersonal AccessVariant = "personal"
	AccessVariantCAS      AccessVariant = "cas"
)

// ParseAccessVariant parses a variant an authorization code may request.
// Only online and offline can be requested by a client.
func ParseAccessVariant(value string) (AccessVariant, error) {
	switch AccessVariant(strings.ToLower(strings.TrimSpace(value))) {
	case AccessVariantOnline:
		return AccessVariantOnline, nil
	case AccessVariantOffline:
		return AccessVariantOffline, nil
	default:
		return "", ErrInvalidParameter
	}
}

// Token is the tagged record shared by authorization codes, refresh tokens and access tokens.
//
// For authorization codes Variant holds the flavor of the access token the code will
// be exchanged for. ClientID is empty for personal and cas access tokens.
//
// IDHash is HashTokenID(ID). Tokens loaded by id carry both; tokens returned by the
// list queries carry only IDHash since the id is not recoverable from storage.
type Token struct {
	ID          string
	IDHash      string
	Type        TokenType
	Variant     AccessVariant
	ClientID    string
	PrincipalID string
	Scopes      []string
	TicketID    string
	Service     string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// IsAuthorizationCode reports whether the token is an authorization code.
func (t *Token) IsAuthorizationCode() bool {
	return t.Type == TokenTypeAuthorizationCode
}

// IsRefreshToken reports whether the token is a refresh token.
func (t *Token) IsRefreshToken() bool {
	return t.Type == TokenTypeRefresh
}

// IsAccessToken reports whether the token is an access token.
func (t *Token) IsAccessToken() bool {
	return t.Type == TokenTypeAccess
}

// ExpiresIn returns the remaining lifetime at now in whole seconds.
func (t *Token) ExpiresIn(now time.Time) int64 {
	remaining := t.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int64(remaining / time.Second)
}

// HasScope reports whether name is among the token scopes.
func (t *Token) HasScope(name string) bool {
	for _, scope := range t.Scopes {
		if scope == name {
			return true
		}
	}
	return false
}

// GrantAuthorizationCodeInput contains the parameters of an approved authorization request.
type GrantAuthorizationCodeInput struct {
	Variant         AccessVariant
	ClientID        string
	GrantorTicketID string
	RedirectURI     string
	Scopes          []string
}
