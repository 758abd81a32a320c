package usecase

import (
	"context"
	"log/slog"
	"sort"
	"time"

	validation "github.com/jellydator/validation"
	"golang.org/x/sync/errgroup"

	auditDomain "github.com/allisson/casoauth/internal/audit/domain"
	"github.com/allisson/casoauth/internal/config"
	"github.com/allisson/casoauth/internal/database"
	apperrors "github.com/allisson/casoauth/internal/errors"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	oauthService "github.com/allisson/casoauth/internal/oauth/service"
	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
	ticketService "github.com/allisson/casoauth/internal/ticket/service"
	ticketUseCase "github.com/allisson/casoauth/internal/ticket/usecase"
	customValidation "github.com/allisson/casoauth/internal/validation"
)

// revocationConcurrency bounds concurrent ticket deletions during bulk revocation.
const revocationConcurrency = 8

// Authentication methods recorded on grantor tickets minted by the engine.
const (
	methodRefreshToken  = "oauth2_refresh_token"
	methodOnlineAccess  = "oauth2_online_access"
	methodPersonalToken = "oauth2_personal_token"
)

type tokenUseCase struct {
	config        *config.Config
	txManager     database.TxManager
	tickets       ticketUseCase.TicketUseCase
	tokenRepo     TokenRepository
	clientRepo    ClientRepository
	scopeCatalog  oauthService.ScopeCatalog
	secretService oauthService.SecretService
	auditLogs     AuditRecorder
	idGenerator   ticketService.IDGenerator
	logger        *slog.Logger
}

// GrantAuthorizationCode mints the code's service ticket from the user's session.
func (t *tokenUseCase) GrantAuthorizationCode(
	ctx context.Context,
	input *oauthDomain.GrantAuthorizationCodeInput,
) (*oauthDomain.Token, error) {
	if input == nil {
		return nil, oauthDomain.ErrInvalidParameter
	}
	err := validation.ValidateStruct(input,
		validation.Field(&input.Variant,
			validation.Required,
			validation.In(oauthDomain.AccessVariantOnline, oauthDomain.AccessVariantOffline),
		),
		validation.Field(&input.ClientID, validation.Required, customValidation.NotBlank),
		validation.Field(&input.GrantorTicketID, validation.Required, customValidation.NotBlank),
		validation.Field(&input.RedirectURI, validation.Required, customValidation.AbsoluteURL),
	)
	if err != nil {
		return nil, apperrors.Wrap(oauthDomain.ErrInvalidParameter, err.Error())
	}

	serviceTicket, err := t.tickets.GrantServiceTicket(ctx, input.GrantorTicketID, input.RedirectURI, t.config.OAuthCodeTTL)
	if err != nil {
		return nil, t.translateMintError(err)
	}

	code := &oauthDomain.Token{
		Type:        oauthDomain.TokenTypeAuthorizationCode,
		Variant:     input.Variant,
		ClientID:    input.ClientID,
		PrincipalID: serviceTicket.Authentication.PrincipalID,
		Scopes:      oauthDomain.ScopeNames(t.GetScopes(input.Scopes)),
		TicketID:    serviceTicket.ID,
		Service:     input.RedirectURI,
	}
	if err := t.persist(ctx, code, serviceTicket); err != nil {
		return nil, err
	}

	t.logger.Debug("authorization code granted",
		slog.String("client_id", code.ClientID),
		slog.String("principal_id", code.PrincipalID),
		slog.String("variant", string(code.Variant)),
	)
	t.auditGrant(ctx, auditDomain.ActionGrantAuthorizationCode, code)

	return code, nil
}

// GrantOfflineRefreshToken redeems an offline code for a refresh token.
func (t *tokenUseCase) GrantOfflineRefreshToken(
	ctx context.Context,
	code *oauthDomain.Token,
	redirectURI string,
) (*oauthDomain.Token, error) {
	if err := t.validateCode(code, oauthDomain.AccessVariantOffline); err != nil {
		return nil, err
	}
	if redirectURI != code.Service {
		return nil, apperrors.Wrap(oauthDomain.ErrInvalidGrant, "redirect uri does not match")
	}

	refreshToken := &oauthDomain.Token{
		Type:     oauthDomain.TokenTypeRefresh,
		ClientID: code.ClientID,
		Scopes:   code.Scopes,
		Service:  code.Service,
	}
	if err := t.redeemCode(ctx, code, refreshToken, t.config.OAuthRefreshTokenTTL, methodRefreshToken); err != nil {
		return nil, err
	}

	t.logger.Info("refresh token granted",
		slog.String("client_id", refreshToken.ClientID),
		slog.String("principal_id", refreshToken.PrincipalID),
	)
	t.auditGrant(ctx, auditDomain.ActionGrantRefreshToken, refreshToken)

	return refreshToken, nil
}

// GrantOnlineAccessToken redeems an online code for an access token.
func (t *tokenUseCase) GrantOnlineAccessToken(
	ctx context.Context,
	code *oauthDomain.Token,
) (*oauthDomain.Token, error) {
	if err := t.validateCode(code, oauthDomain.AccessVariantOnline); err != nil {
		return nil, err
	}

	accessToken := &oauthDomain.Token{
		Type:     oauthDomain.TokenTypeAccess,
		Variant:  oauthDomain.AccessVariantOnline,
		ClientID: code.ClientID,
		Scopes:   code.Scopes,
		Service:  code.Service,
	}
	if err := t.redeemCode(ctx, code, accessToken, t.config.OAuthOnlineAccessTokenTTL, methodOnlineAccess); err != nil {
		return nil, err
	}

	t.logger.Info("online access token granted",
		slog.String("client_id", accessToken.ClientID),
		slog.String("principal_id", accessToken.PrincipalID),
	)
	t.auditGrant(ctx, auditDomain.ActionGrantOnlineAccessToken, accessToken)

	return accessToken, nil
}

// GrantOfflineAccessToken mints a service ticket from the refresh token's grantor ticket.
func (t *tokenUseCase) GrantOfflineAccessToken(
	ctx context.Context,
	refreshToken *oauthDomain.Token,
) (*oauthDomain.Token, error) {
	if refreshToken == nil || refreshToken.Type != oauthDomain.TokenTypeRefresh {
		return nil, apperrors.Wrap(oauthDomain.ErrInvalidParameter, "refresh token required")
	}

	if _, live, err := t.liveTicket(ctx, refreshToken.TicketID); err != nil {
		return nil, err
	} else if !live {
		return nil, apperrors.Wrap(oauthDomain.ErrInvalidGrant, "refresh token expired")
	}

	serviceTicket, err := t.tickets.GrantServiceTicket(
		ctx,
		refreshToken.TicketID,
		refreshToken.Service,
		t.config.OAuthOfflineAccessTokenTTL,
	)
	if err != nil {
		return nil, t.translateMintError(err)
	}

	accessToken := &oauthDomain.Token{
		Type:        oauthDomain.TokenTypeAccess,
		Variant:     oauthDomain.AccessVariantOffline,
		ClientID:    refreshToken.ClientID,
		PrincipalID: refreshToken.PrincipalID,
		Scopes:      refreshToken.Scopes,
		TicketID:    serviceTicket.ID,
		Service:     refreshToken.Service,
	}
	if err := t.persist(ctx, accessToken, serviceTicket); err != nil {
		return nil, err
	}

	t.logger.Debug("offline access token granted",
		slog.String("client_id", accessToken.ClientID),
		slog.String("principal_id", accessToken.PrincipalID),
	)
	t.auditGrant(ctx, auditDomain.ActionGrantOfflineAccessToken, accessToken)

	return accessToken, nil
}

// GrantCASAccessToken wraps the grantor ticket; no ticket is minted.
func (t *tokenUseCase) GrantCASAccessToken(
	ctx context.Context,
	grantorTicket *ticketDomain.Ticket,
	service string,
) (*oauthDomain.Token, error) {
	if grantorTicket == nil || grantorTicket.Kind != ticketDomain.KindGrantor {
		return nil, apperrors.Wrap(oauthDomain.ErrInvalidParameter, "grantor ticket required")
	}
	if err := validation.Validate(service, validation.Required, customValidation.NotBlank); err != nil {
		return nil, apperrors.Wrap(oauthDomain.ErrInvalidParameter, "service: "+err.Error())
	}
	if t.tickets.IsExpired(grantorTicket) {
		return nil, apperrors.Wrap(oauthDomain.ErrUnauthorizedGrant, "grantor ticket expired")
	}

	id, err := t.idGenerator.GenerateID(oauthDomain.AccessTokenPrefix)
	if err != nil {
		return nil, err
	}

	accessToken := &oauthDomain.Token{
		ID:          id,
		Type:        oauthDomain.TokenTypeAccess,
		Variant:     oauthDomain.AccessVariantCAS,
		PrincipalID: grantorTicket.Authentication.PrincipalID,
		Scopes:      oauthDomain.ScopeNames(t.GetDefaultScope()),
		TicketID:    grantorTicket.ID,
		Service:     service,
	}
	hydrate(accessToken, grantorTicket)

	if err := t.tokenRepo.Create(ctx, accessToken); err != nil {
		return nil, err
	}
	t.auditGrant(ctx, auditDomain.ActionGrantCASAccessToken, accessToken)

	return accessToken, nil
}

// GrantPersonalAccessToken mints a grantor ticket for the personal token's principal and
// reuses the personal token id. A live token with that id is returned as is.
func (t *tokenUseCase) GrantPersonalAccessToken(
	ctx context.Context,
	personalToken *oauthDomain.PersonalToken,
) (*oauthDomain.Token, error) {
	if personalToken == nil {
		return nil, oauthDomain.ErrInvalidParameter
	}
	err := validation.ValidateStruct(personalToken,
		validation.Field(&personalToken.ID,
			validation.Required,
			customValidation.HasPrefix(oauthDomain.AccessTokenPrefix),
		),
		validation.Field(&personalToken.PrincipalID, validation.Required, customValidation.NotBlank),
	)
	if err != nil {
		return nil, apperrors.Wrap(oauthDomain.ErrInvalidParameter, err.Error())
	}

	existing, err := t.GetTokenOfType(ctx, personalToken.ID, oauthDomain.TokenTypeAccess)
	switch {
	case err == nil:
		return existing, nil
	case !apperrors.Is(err, oauthDomain.ErrInvalidToken):
		return nil, err
	}

	grantorTicket, err := t.tickets.CreateGrantorTicket(
		ctx,
		ticketDomain.Authentication{PrincipalID: personalToken.PrincipalID, Method: methodPersonalToken},
		t.config.OAuthPersonalAccessTokenTTL,
	)
	if err != nil {
		return nil, t.translateMintError(err)
	}

	accessToken := &oauthDomain.Token{
		ID:          personalToken.ID,
		Type:        oauthDomain.TokenTypeAccess,
		Variant:     oauthDomain.AccessVariantPersonal,
		PrincipalID: personalToken.PrincipalID,
		Scopes:      personalToken.Scopes,
		TicketID:    grantorTicket.ID,
	}
	hydrate(accessToken, grantorTicket)

	if err := t.tokenRepo.Create(ctx, accessToken); err != nil {
		t.discardTicket(ctx, grantorTicket.ID)
		if apperrors.Is(err, oauthDomain.ErrTokenAlreadyExists) {
			// A concurrent grant for the same personal token won.
			return t.GetTokenOfType(ctx, personalToken.ID, oauthDomain.TokenTypeAccess)
		}
		return nil, err
	}

	t.logger.Info("personal access token granted", slog.String("principal_id", accessToken.PrincipalID))
	t.auditGrant(ctx, auditDomain.ActionGrantPersonalAccessToken, accessToken)

	return accessToken, nil
}

// RevokeToken deletes the backing ticket and the records anchored to it.
func (t *tokenUseCase) RevokeToken(ctx context.Context, token *oauthDomain.Token) (bool, error) {
	if token == nil || token.TicketID == "" {
		return false, oauthDomain.ErrInvalidParameter
	}

	revoked, err := t.revokeTicket(ctx, token.TicketID)
	if err != nil {
		return false, err
	}
	t.audit(ctx, &auditDomain.Entry{
		Action:      auditDomain.ActionRevokeToken,
		ClientID:    token.ClientID,
		PrincipalID: token.PrincipalID,
		TokenHash:   tokenHash(token),
		Metadata: map[string]any{
			"token_type": string(token.Type),
			"revoked":    revoked,
		},
	})
	return revoked, nil
}

// RevokeClientTokens revokes every code, refresh token and access token of an
// authenticated client. Personal and cas access tokens carry no client id and survive.
func (t *tokenUseCase) RevokeClientTokens(ctx context.Context, clientID, clientSecret string) (bool, error) {
	if _, err := t.authenticateClient(ctx, clientID, clientSecret); err != nil {
		if apperrors.Is(err, oauthDomain.ErrUnauthorizedGrant) {
			t.logger.Info("client revocation refused", slog.String("client_id", clientID))
			return false, nil
		}
		return false, err
	}

	tokens, err := t.tokenRepo.ListByClient(ctx, clientID)
	if err != nil {
		return false, err
	}

	revoked, err := t.revokeAll(ctx, tokens, func(*oauthDomain.Token) bool {
		return true
	})
	if err != nil {
		return false, err
	}

	t.logger.Info("client tokens revoked",
		slog.String("client_id", clientID),
		slog.Int("tickets", revoked),
	)
	t.audit(ctx, &auditDomain.Entry{
		Action:   auditDomain.ActionRevokeClientTokens,
		ClientID: clientID,
		Metadata: map[string]any{"tickets": revoked},
	})

	return true, nil
}

// RevokeClientPrincipalTokens revokes the (client, principal) pair's refresh tokens and
// online access tokens. Offline access tokens decay on their own.
func (t *tokenUseCase) RevokeClientPrincipalTokens(
	ctx context.Context,
	accessToken *oauthDomain.Token,
) (bool, error) {
	if accessToken == nil || !accessToken.IsAccessToken() || accessToken.ClientID == "" {
		return false, apperrors.Wrap(oauthDomain.ErrInvalidParameter, "client access token required")
	}

	tokens, err := t.tokenRepo.ListByClientPrincipal(ctx, accessToken.ClientID, accessToken.PrincipalID)
	if err != nil {
		return false, err
	}

	revoked, err := t.revokeAll(ctx, tokens, func(token *oauthDomain.Token) bool {
		return token.IsRefreshToken() ||
			(token.IsAccessToken() && token.Variant == oauthDomain.AccessVariantOnline)
	})
	if err != nil {
		return false, err
	}

	t.logger.Info("client principal tokens revoked",
		slog.String("client_id", accessToken.ClientID),
		slog.String("principal_id", accessToken.PrincipalID),
		slog.Int("tickets", revoked),
	)
	t.audit(ctx, &auditDomain.Entry{
		Action:      auditDomain.ActionRevokeClientPrincipalTokens,
		ClientID:    accessToken.ClientID,
		PrincipalID: accessToken.PrincipalID,
		Metadata:    map[string]any{"tickets": revoked},
	})

	return true, nil
}

// GetToken returns a live token of the type encoded in its prefix.
func (t *tokenUseCase) GetToken(ctx context.Context, tokenID string) (*oauthDomain.Token, error) {
	return t.GetTokenOfType(ctx, tokenID, "")
}

// GetTokenOfType is the only place token expiry is enforced.
func (t *tokenUseCase) GetTokenOfType(
	ctx context.Context,
	tokenID string,
	tokenType oauthDomain.TokenType,
) (*oauthDomain.Token, error) {
	inferred, ok := oauthDomain.TokenTypeFromID(tokenID)
	if !ok {
		return nil, oauthDomain.ErrInvalidToken
	}
	if tokenType == "" {
		tokenType = inferred
	}
	if tokenType != inferred {
		return nil, oauthDomain.ErrInvalidToken
	}

	token, err := t.tokenRepo.Get(ctx, tokenID)
	if err != nil {
		if apperrors.Is(err, oauthDomain.ErrTokenNotFound) {
			return nil, oauthDomain.ErrInvalidToken
		}
		return nil, err
	}
	if token.Type != tokenType {
		return nil, oauthDomain.ErrInvalidToken
	}

	ticket, live, err := t.liveTicket(ctx, token.TicketID)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, oauthDomain.ErrInvalidToken
	}

	hydrate(token, ticket)
	return token, nil
}

// GetRefreshToken returns the oldest live refresh token of the pair.
func (t *tokenUseCase) GetRefreshToken(
	ctx context.Context,
	clientID, principalID string,
) (*oauthDomain.Token, error) {
	tokens, err := t.tokenRepo.ListByClientPrincipal(ctx, clientID, principalID)
	if err != nil {
		return nil, err
	}

	for _, token := range tokens {
		if !token.IsRefreshToken() {
			continue
		}
		ticket, live, err := t.liveTicket(ctx, token.TicketID)
		if err != nil {
			return nil, err
		}
		if live {
			hydrate(token, ticket)
			return token, nil
		}
	}

	return nil, oauthDomain.ErrTokenNotFound
}

func (t *tokenUseCase) IsAccessToken(tokenID string) bool {
	tokenType, ok := oauthDomain.TokenTypeFromID(tokenID)
	return ok && tokenType == oauthDomain.TokenTypeAccess
}

func (t *tokenUseCase) IsRefreshToken(tokenID string) bool {
	tokenType, ok := oauthDomain.TokenTypeFromID(tokenID)
	return ok && tokenType == oauthDomain.TokenTypeRefresh
}

// GetScopes drops unknown names and always adds the default scopes.
func (t *tokenUseCase) GetScopes(names []string) map[string]oauthDomain.Scope {
	scopes := t.GetDefaultScope()
	for _, name := range names {
		if scope, ok := t.scopeCatalog.Get(name); ok {
			scopes[scope.Name] = scope
		}
	}
	return scopes
}

func (t *tokenUseCase) GetDefaultScope() map[string]oauthDomain.Scope {
	defaults := t.scopeCatalog.Defaults()
	scopes := make(map[string]oauthDomain.Scope, len(defaults))
	for _, scope := range defaults {
		scopes[scope.Name] = scope
	}
	return scopes
}

// GetClientMetadata authenticates the client before exposing its metadata.
func (t *tokenUseCase) GetClientMetadata(
	ctx context.Context,
	clientID, clientSecret string,
) (*oauthDomain.ClientMetadata, error) {
	client, err := t.authenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return nil, err
	}

	count, err := t.tokenRepo.CountPrincipalsByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	return &oauthDomain.ClientMetadata{
		ClientID:       client.ID,
		Name:           client.Name,
		Description:    client.Description,
		RedirectURI:    client.RedirectURI,
		AutoApprove:    client.AutoApprove,
		PrincipalCount: count,
	}, nil
}

// GetPrincipalMetadata groups the principal's live refresh and access tokens by client.
func (t *tokenUseCase) GetPrincipalMetadata(
	ctx context.Context,
	accessToken *oauthDomain.Token,
) (map[string]*oauthDomain.PrincipalClientMetadata, error) {
	if accessToken == nil || !accessToken.IsAccessToken() {
		return nil, apperrors.Wrap(oauthDomain.ErrInvalidParameter, "access token required")
	}

	tokens, err := t.tokenRepo.ListByPrincipal(ctx, accessToken.PrincipalID)
	if err != nil {
		return nil, err
	}

	scopeSets := make(map[string]map[string]struct{})
	for _, token := range tokens {
		if token.ClientID == "" || token.IsAuthorizationCode() {
			continue
		}
		_, live, err := t.liveTicket(ctx, token.TicketID)
		if err != nil {
			return nil, err
		}
		if !live {
			continue
		}

		set, ok := scopeSets[token.ClientID]
		if !ok {
			set = make(map[string]struct{})
			scopeSets[token.ClientID] = set
		}
		for _, scope := range token.Scopes {
			set[scope] = struct{}{}
		}
	}

	result := make(map[string]*oauthDomain.PrincipalClientMetadata, len(scopeSets))
	for clientID, set := range scopeSets {
		metadata := &oauthDomain.PrincipalClientMetadata{
			ClientID: clientID,
			Name:     clientID,
			Scopes:   make([]string, 0, len(set)),
		}

		client, err := t.clientRepo.Get(ctx, clientID)
		switch {
		case err == nil:
			metadata.Name = client.Name
			metadata.Description = client.Description
		case !apperrors.Is(err, oauthDomain.ErrClientNotFound):
			return nil, err
		}

		for scope := range set {
			metadata.Scopes = append(metadata.Scopes, scope)
		}
		sort.Strings(metadata.Scopes)
		result[clientID] = metadata
	}

	return result, nil
}

// validateCode checks the code shape before any state changes.
func (t *tokenUseCase) validateCode(code *oauthDomain.Token, variant oauthDomain.AccessVariant) error {
	if code == nil || !code.IsAuthorizationCode() {
		return apperrors.Wrap(oauthDomain.ErrInvalidParameter, "authorization code required")
	}
	if code.Variant != variant {
		return apperrors.Wrap(oauthDomain.ErrInvalidGrant, "authorization code was issued for "+string(code.Variant)+" access")
	}
	return nil
}

// redeemCode consumes the code and stores target anchored to a new grantor ticket.
//
// Consumption is a compare-and-delete on the code's service ticket: only the caller
// whose delete succeeds proceeds, so a code is redeemed at most once.
func (t *tokenUseCase) redeemCode(
	ctx context.Context,
	code *oauthDomain.Token,
	target *oauthDomain.Token,
	ttl time.Duration,
	method string,
) error {
	codeTicket, err := t.tickets.GetTicket(ctx, code.TicketID)
	if err != nil {
		if apperrors.Is(err, ticketDomain.ErrTicketNotFound) {
			return apperrors.Wrap(oauthDomain.ErrInvalidGrant, "authorization code already redeemed")
		}
		return err
	}
	if t.tickets.IsExpired(codeTicket) {
		if _, err := t.revokeTicket(ctx, codeTicket.ID); err != nil {
			return err
		}
		return apperrors.Wrap(oauthDomain.ErrInvalidGrant, "authorization code expired")
	}

	deleted, err := t.tickets.DeleteTicket(ctx, codeTicket.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.Wrap(oauthDomain.ErrInvalidGrant, "authorization code already redeemed")
	}

	authn := codeTicket.Authentication
	authn.Method = method
	grantorTicket, err := t.tickets.CreateGrantorTicket(ctx, authn, ttl)
	if err != nil {
		if _, gcErr := t.tokenRepo.DeleteByTicketID(ctx, codeTicket.ID); gcErr != nil {
			t.logger.Error("failed to delete redeemed code", slog.Any("error", gcErr))
		}
		return t.translateMintError(err)
	}

	id, err := t.idGenerator.GenerateID(target.Type.Prefix())
	if err != nil {
		t.discardTicket(ctx, grantorTicket.ID)
		return err
	}

	target.ID = id
	target.PrincipalID = codeTicket.Authentication.PrincipalID
	target.TicketID = grantorTicket.ID
	hydrate(target, grantorTicket)

	err = t.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := t.tokenRepo.DeleteByTicketID(ctx, codeTicket.ID); err != nil {
			return err
		}
		return t.tokenRepo.Create(ctx, target)
	})
	if err != nil {
		t.discardTicket(ctx, grantorTicket.ID)
		return err
	}

	return nil
}

// persist stores a token anchored to a freshly minted ticket, discarding the ticket on failure.
func (t *tokenUseCase) persist(ctx context.Context, token *oauthDomain.Token, ticket *ticketDomain.Ticket) error {
	id, err := t.idGenerator.GenerateID(token.Type.Prefix())
	if err != nil {
		t.discardTicket(ctx, ticket.ID)
		return err
	}
	token.ID = id
	hydrate(token, ticket)

	if err := t.tokenRepo.Create(ctx, token); err != nil {
		t.discardTicket(ctx, ticket.ID)
		return err
	}
	return nil
}

// liveTicket loads a ticket and collects it, together with the records anchored to it,
// when it is missing or expired.
func (t *tokenUseCase) liveTicket(ctx context.Context, ticketID string) (*ticketDomain.Ticket, bool, error) {
	ticket, err := t.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		if !apperrors.Is(err, ticketDomain.ErrTicketNotFound) {
			return nil, false, err
		}
		if _, err := t.tokenRepo.DeleteByTicketID(ctx, ticketID); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	if t.tickets.IsExpired(ticket) {
		if _, err := t.revokeTicket(ctx, ticketID); err != nil {
			return nil, false, err
		}
		t.logger.Debug("expired ticket collected", slog.String("ticket_kind", string(ticket.Kind)))
		t.audit(ctx, &auditDomain.Entry{
			Action:      auditDomain.ActionCollectExpired,
			PrincipalID: ticket.Authentication.PrincipalID,
			Metadata:    map[string]any{"ticket_kind": string(ticket.Kind)},
		})
		return nil, false, nil
	}

	return ticket, true, nil
}

// revokeTicket deletes a ticket and every record anchored to it.
func (t *tokenUseCase) revokeTicket(ctx context.Context, ticketID string) (bool, error) {
	deleted, err := t.tickets.DeleteTicket(ctx, ticketID)
	if err != nil {
		return false, err
	}
	if _, err := t.tokenRepo.DeleteByTicketID(ctx, ticketID); err != nil {
		return deleted, err
	}
	return deleted, nil
}

// revokeAll revokes the distinct tickets behind the matching tokens with bounded concurrency.
func (t *tokenUseCase) revokeAll(
	ctx context.Context,
	tokens []*oauthDomain.Token,
	match func(token *oauthDomain.Token) bool,
) (int, error) {
	ticketIDs := make(map[string]struct{})
	for _, token := range tokens {
		if match(token) {
			ticketIDs[token.TicketID] = struct{}{}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(revocationConcurrency)
	for ticketID := range ticketIDs {
		g.Go(func() error {
			_, err := t.revokeTicket(gctx, ticketID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	return len(ticketIDs), nil
}

// auditGrant records a freshly granted token.
func (t *tokenUseCase) auditGrant(ctx context.Context, action auditDomain.Action, token *oauthDomain.Token) {
	metadata := map[string]any{"scopes": token.Scopes}
	if token.Variant != "" {
		metadata["variant"] = string(token.Variant)
	}
	t.audit(ctx, &auditDomain.Entry{
		Action:      action,
		ClientID:    token.ClientID,
		PrincipalID: token.PrincipalID,
		TokenHash:   tokenHash(token),
		Metadata:    metadata,
	})
}

// audit never fails the operation it describes; a lost entry is logged instead.
func (t *tokenUseCase) audit(ctx context.Context, entry *auditDomain.Entry) {
	if err := t.auditLogs.Record(ctx, entry); err != nil {
		t.logger.Error("failed to record audit log",
			slog.String("action", string(entry.Action)),
			slog.Any("error", err),
		)
	}
}

func tokenHash(token *oauthDomain.Token) string {
	if token.IDHash != "" {
		return token.IDHash
	}
	if token.ID != "" {
		return oauthDomain.HashTokenID(token.ID)
	}
	return ""
}

// discardTicket removes a ticket minted for a grant that failed afterwards.
func (t *tokenUseCase) discardTicket(ctx context.Context, ticketID string) {
	if _, err := t.tickets.DeleteTicket(ctx, ticketID); err != nil {
		t.logger.Error("failed to discard ticket", slog.Any("error", err))
	}
}

func (t *tokenUseCase) authenticateClient(
	ctx context.Context,
	clientID, clientSecret string,
) (*oauthDomain.Client, error) {
	client, err := t.clientRepo.Get(ctx, clientID)
	if err != nil {
		if apperrors.Is(err, oauthDomain.ErrClientNotFound) {
			return nil, apperrors.Wrap(oauthDomain.ErrUnauthorizedGrant, "unknown client")
		}
		return nil, err
	}
	if !t.secretService.CompareSecret(clientSecret, client.Secret) {
		return nil, apperrors.Wrap(oauthDomain.ErrUnauthorizedGrant, "invalid client secret")
	}
	return client, nil
}

// translateMintError maps ticket-layer refusals to ErrUnauthorizedGrant.
// Infrastructure failures pass through unchanged.
func (t *tokenUseCase) translateMintError(err error) error {
	switch {
	case apperrors.Is(err, ticketDomain.ErrTicketNotFound),
		apperrors.Is(err, ticketDomain.ErrTicketExpired),
		apperrors.Is(err, ticketDomain.ErrInvalidTicketKind),
		apperrors.Is(err, ticketDomain.ErrAuthenticationRejected):
		return apperrors.Wrap(oauthDomain.ErrUnauthorizedGrant, err.Error())
	default:
		return err
	}
}

// hydrate copies the creation and expiry times of the backing ticket and fills IDHash
// when the id is known.
func hydrate(token *oauthDomain.Token, ticket *ticketDomain.Ticket) {
	token.CreatedAt = ticket.CreatedAt
	token.ExpiresAt = ticket.ExpiresAt
	if token.ID != "" {
		token.IDHash = oauthDomain.HashTokenID(token.ID)
	}
}

// NewTokenUseCase creates the token engine.
func NewTokenUseCase(
	config *config.Config,
	txManager database.TxManager,
	tickets ticketUseCase.TicketUseCase,
	tokenRepo TokenRepository,
	clientRepo ClientRepository,
	scopeCatalog oauthService.ScopeCatalog,
	secretService oauthService.SecretService,
	auditLogs AuditRecorder,
	idGenerator ticketService.IDGenerator,
	logger *slog.Logger,
) TokenUseCase {
	return &tokenUseCase{
		config:        config,
		txManager:     txManager,
		tickets:       tickets,
		tokenRepo:     tokenRepo,
		clientRepo:    clientRepo,
		scopeCatalog:  scopeCatalog,
		secretService: secretService,
		auditLogs:     auditLogs,
		idGenerator:   idGenerator,
		logger:        logger,
	}
}
