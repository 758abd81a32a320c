package usecase

import (
	"context"
	"time"

	"github.com/allisson/casoauth/internal/metrics"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
// Pure helpers pass through unrecorded.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *tokenUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.RecordOutcome(ctx, t.metrics, metrics.DomainOAuth, operation, start, err)
}

func (t *tokenUseCaseWithMetrics) GrantAuthorizationCode(
	ctx context.Context,
	input *oauthDomain.GrantAuthorizationCodeInput,
) (*oauthDomain.Token, error) {
	start := time.Now()
	token, err := t.next.GrantAuthorizationCode(ctx, input)
	t.record(ctx, "code_grant", start, err)
	return token, err
}

func (t *tokenUseCaseWithMetrics) GrantOfflineRefreshToken(
	ctx context.Context,
	code *oauthDomain.Token,
	redirectURI string,
) (*oauthDomain.Token, error) {
	start := time.Now()
	token, err := t.next.GrantOfflineRefreshToken(ctx, code, redirectURI)
	t.record(ctx, "refresh_token_grant", start, err)
	return token, err
}

func (t *tokenUseCaseWithMetrics) GrantOnlineAccessToken(
	ctx context.Context,
	code *oauthDomain.Token,
) (*oauthDomain.Token, error) {
	start := time.Now()
	token, err := t.next.GrantOnlineAccessToken(ctx, code)
	t.record(ctx, "online_access_token_grant", start, err)
	return token, err
}

func (t *tokenUseCaseWithMetrics) GrantOfflineAccessToken(
	ctx context.Context,
	refreshToken *oauthDomain.Token,
) (*oauthDomain.Token, error) {
	start := time.Now()
	token, err := t.next.GrantOfflineAccessToken(ctx, refreshToken)
	t.record(ctx, "offline_access_token_grant", start, err)
	return token, err
}

func (t *tokenUseCaseWithMetrics) GrantCASAccessToken(
	ctx context.Context,
	grantorTicket *ticketDomain.Ticket,
	service string,
) (*oauthDomain.Token, error) {
	start := time.Now()
	token, err := t.next.GrantCASAccessToken(ctx, grantorTicket, service)
	t.record(ctx, "cas_access_token_grant", start, err)
	return token, err
}

func (t *tokenUseCaseWithMetrics) GrantPersonalAccessToken(
	ctx context.Context,
	personalToken *oauthDomain.PersonalToken,
) (*oauthDomain.Token, error) {
	start := time.Now()
	token, err := t.next.GrantPersonalAccessToken(ctx, personalToken)
	t.record(ctx, "personal_access_token_grant", start, err)
	return token, err
}

func (t *tokenUseCaseWithMetrics) RevokeToken(ctx context.Context, token *oauthDomain.Token) (bool, error) {
	start := time.Now()
	revoked, err := t.next.RevokeToken(ctx, token)
	t.record(ctx, "token_revoke", start, err)
	return revoked, err
}

func (t *tokenUseCaseWithMetrics) RevokeClientTokens(
	ctx context.Context,
	clientID, clientSecret string,
) (bool, error) {
	start := time.Now()
	revoked, err := t.next.RevokeClientTokens(ctx, clientID, clientSecret)
	t.record(ctx, "client_revoke", start, err)
	return revoked, err
}

func (t *tokenUseCaseWithMetrics) RevokeClientPrincipalTokens(
	ctx context.Context,
	accessToken *oauthDomain.Token,
) (bool, error) {
	start := time.Now()
	revoked, err := t.next.RevokeClientPrincipalTokens(ctx, accessToken)
	t.record(ctx, "client_principal_revoke", start, err)
	return revoked, err
}

func (t *tokenUseCaseWithMetrics) GetToken(ctx context.Context, tokenID string) (*oauthDomain.Token, error) {
	start := time.Now()
	token, err := t.next.GetToken(ctx, tokenID)
	t.record(ctx, "token_get", start, err)
	return token, err
}

func (t *tokenUseCaseWithMetrics) GetTokenOfType(
	ctx context.Context,
	tokenID string,
	tokenType oauthDomain.TokenType,
) (*oauthDomain.Token, error) {
	start := time.Now()
	token, err := t.next.GetTokenOfType(ctx, tokenID, tokenType)
	t.record(ctx, "token_get", start, err)
	return token, err
}

func (t *tokenUseCaseWithMetrics) GetRefreshToken(
	ctx context.Context,
	clientID, principalID string,
) (*oauthDomain.Token, error) {
	start := time.Now()
	token, err := t.next.GetRefreshToken(ctx, clientID, principalID)
	t.record(ctx, "refresh_token_get", start, err)
	return token, err
}

func (t *tokenUseCaseWithMetrics) IsAccessToken(tokenID string) bool {
	return t.next.IsAccessToken(tokenID)
}

func (t *tokenUseCaseWithMetrics) IsRefreshToken(tokenID string) bool {
	return t.next.IsRefreshToken(tokenID)
}

func (t *tokenUseCaseWithMetrics) GetScopes(names []string) map[string]oauthDomain.Scope {
	return t.next.GetScopes(names)
}

func (t *tokenUseCaseWithMetrics) GetDefaultScope() map[string]oauthDomain.Scope {
	return t.next.GetDefaultScope()
}

func (t *tokenUseCaseWithMetrics) GetClientMetadata(
	ctx context.Context,
	clientID, clientSecret string,
) (*oauthDomain.ClientMetadata, error) {
	start := time.Now()
	metadata, err := t.next.GetClientMetadata(ctx, clientID, clientSecret)
	t.record(ctx, "client_metadata_get", start, err)
	return metadata, err
}

func (t *tokenUseCaseWithMetrics) GetPrincipalMetadata(
	ctx context.Context,
	accessToken *oauthDomain.Token,
) (map[string]*oauthDomain.PrincipalClientMetadata, error) {
	start := time.Now()
	metadata, err := t.next.GetPrincipalMetadata(ctx, accessToken)
	t.record(ctx, "principal_metadata_get", start, err)
	return metadata, err
}
