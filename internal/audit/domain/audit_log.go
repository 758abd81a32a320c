// Package domain defines the audit trail of the token engine: one entry per grant,
// revocation and expiry collection.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/casoauth/internal/errors"
)

// Action names what happened to the token or tickets an entry refers to.
type Action string

const (
	ActionGrantAuthorizationCode      Action = "grant_authorization_code"
	ActionGrantRefreshToken           Action = "grant_refresh_token"
	ActionGrantOnlineAccessToken      Action = "grant_online_access_token"
	ActionGrantOfflineAccessToken     Action = "grant_offline_access_token"
	ActionGrantCASAccessToken         Action = "grant_cas_access_token"
	ActionGrantPersonalAccessToken    Action = "grant_personal_access_token"
	ActionRevokeToken                 Action = "revoke_token"
	ActionRevokeClientTokens          Action = "revoke_client_tokens"
	ActionRevokeClientPrincipalTokens Action = "revoke_client_principal_tokens"
	ActionCollectExpired              Action = "collect_expired"
)

var (
	// ErrSignatureInvalid indicates an entry whose signature does not match its content.
	ErrSignatureInvalid = errors.New("audit log signature invalid")

	// ErrSigningKeyMissing indicates signed entries were found but no key is configured.
	ErrSigningKeyMissing = apperrors.Wrap(apperrors.ErrInvalidInput, "audit signing key not configured")
)

// Entry is what the token engine reports. ClientID is empty for cas and personal
// tokens and for collections; TokenHash is empty when no single token is involved.
type Entry struct {
	Action      Action
	ClientID    string
	PrincipalID string
	TokenHash   string
	Metadata    map[string]any
}

// AuditLog is a persisted Entry. Signature is an HMAC over every other field except
// ID and IsSigned; unsigned entries are kept when no signing key is configured.
type AuditLog struct {
	ID          uuid.UUID
	Action      Action
	ClientID    string
	PrincipalID string
	TokenHash   string
	Metadata    map[string]any
	Signature   []byte
	IsSigned    bool
	CreatedAt   time.Time
}
