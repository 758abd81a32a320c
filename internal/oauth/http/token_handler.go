// Package http provides the OAuth authorization, token, revocation, metadata and
// native service validation endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/casoauth/internal/errors"
	"github.com/allisson/casoauth/internal/httputil"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	"github.com/allisson/casoauth/internal/oauth/http/dto"
	oauthUseCase "github.com/allisson/casoauth/internal/oauth/usecase"
	customValidation "github.com/allisson/casoauth/internal/validation"
)

// TokenHandler serves the token endpoint.
type TokenHandler struct {
	tokenUseCase         oauthUseCase.TokenUseCase
	clientUseCase        oauthUseCase.ClientUseCase
	personalTokenUseCase oauthUseCase.PersonalTokenUseCase
	now                  func() time.Time
	logger               *slog.Logger
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(
	tokenUseCase oauthUseCase.TokenUseCase,
	clientUseCase oauthUseCase.ClientUseCase,
	personalTokenUseCase oauthUseCase.PersonalTokenUseCase,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		tokenUseCase:         tokenUseCase,
		clientUseCase:        clientUseCase,
		personalTokenUseCase: personalTokenUseCase,
		now:                  time.Now,
		logger:               logger,
	}
}

// TokenHandler exchanges a grant for tokens.
// POST /v1/oauth2/token
//
// grant_type=authorization_code redeems a code for the access variant it was issued
// for: offline codes yield a refresh token plus an access token, online codes yield an
// access token. grant_type=refresh_token mints a new offline access token and
// grant_type=personal_token mints a personal access token.
func (h *TokenHandler) TokenHandler(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		httputil.WriteOAuthError(c, http.StatusBadRequest, httputil.OAuthErrorInvalidRequest, err.Error())
		return
	}

	if req.GrantType != "" && !req.SupportedGrantType() {
		httputil.WriteOAuthError(c, http.StatusBadRequest, httputil.OAuthErrorUnsupportedGrantType,
			"grant_type must be authorization_code, refresh_token or personal_token")
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleOAuthErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ctx := c.Request.Context()

	var (
		accessToken  *oauthDomain.Token
		refreshToken *oauthDomain.Token
		err          error
	)
	switch req.GrantType {
	case dto.GrantTypeAuthorizationCode:
		accessToken, refreshToken, err = h.redeemCode(ctx, &req)
	case dto.GrantTypeRefreshToken:
		accessToken, err = h.refresh(ctx, &req)
	case dto.GrantTypePersonalToken:
		accessToken, err = h.personal(ctx, &req)
	}
	if err != nil {
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(http.StatusOK, dto.MapTokenResponse(accessToken, refreshToken, h.now()))
}

func (h *TokenHandler) redeemCode(
	ctx context.Context,
	req *dto.TokenRequest,
) (*oauthDomain.Token, *oauthDomain.Token, error) {
	client, err := h.clientUseCase.Authenticate(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		return nil, nil, err
	}

	code, err := h.lookupGrant(ctx, req.Code, oauthDomain.TokenTypeAuthorizationCode)
	if err != nil {
		return nil, nil, err
	}
	if code.ClientID != client.ID {
		h.logger.Info("authorization code presented by another client",
			slog.String("client_id", client.ID),
			slog.String("code_client_id", code.ClientID),
		)
		return nil, nil, apperrors.Wrap(oauthDomain.ErrInvalidGrant, "code was issued to another client")
	}

	switch code.Variant {
	case oauthDomain.AccessVariantOffline:
		refreshToken, err := h.tokenUseCase.GrantOfflineRefreshToken(ctx, code, req.RedirectURI)
		if err != nil {
			return nil, nil, err
		}
		accessToken, err := h.tokenUseCase.GrantOfflineAccessToken(ctx, refreshToken)
		if err != nil {
			// The code is already spent; a refresh token the client never receives must not outlive the call.
			if _, revokeErr := h.tokenUseCase.RevokeToken(ctx, refreshToken); revokeErr != nil {
				h.logger.Error("failed to revoke orphaned refresh token",
					slog.String("client_id", client.ID),
					slog.Any("error", revokeErr),
				)
			}
			return nil, nil, err
		}
		return accessToken, refreshToken, nil
	case oauthDomain.AccessVariantOnline:
		if code.Service != req.RedirectURI {
			return nil, nil, apperrors.Wrap(oauthDomain.ErrInvalidGrant, "redirect_uri mismatch")
		}
		accessToken, err := h.tokenUseCase.GrantOnlineAccessToken(ctx, code)
		if err != nil {
			return nil, nil, err
		}
		return accessToken, nil, nil
	default:
		return nil, nil, apperrors.Wrap(oauthDomain.ErrInvalidGrant, "unsupported code variant")
	}
}

func (h *TokenHandler) refresh(ctx context.Context, req *dto.TokenRequest) (*oauthDomain.Token, error) {
	client, err := h.clientUseCase.Authenticate(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		return nil, err
	}

	refreshToken, err := h.lookupGrant(ctx, req.RefreshToken, oauthDomain.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if refreshToken.ClientID != client.ID {
		return nil, apperrors.Wrap(oauthDomain.ErrInvalidGrant, "refresh token was issued to another client")
	}

	return h.tokenUseCase.GrantOfflineAccessToken(ctx, refreshToken)
}

func (h *TokenHandler) personal(ctx context.Context, req *dto.TokenRequest) (*oauthDomain.Token, error) {
	personalToken, err := h.personalTokenUseCase.Get(ctx, req.PersonalToken)
	if err != nil {
		if apperrors.Is(err, oauthDomain.ErrPersonalTokenNotFound) {
			return nil, apperrors.Wrap(oauthDomain.ErrInvalidGrant, "unknown personal token")
		}
		return nil, err
	}
	return h.tokenUseCase.GrantPersonalAccessToken(ctx, personalToken)
}

// lookupGrant loads a live code or refresh token. Unknown and expired grants are
// reported as invalid_grant rather than invalid_token.
func (h *TokenHandler) lookupGrant(
	ctx context.Context,
	tokenID string,
	tokenType oauthDomain.TokenType,
) (*oauthDomain.Token, error) {
	token, err := h.tokenUseCase.GetTokenOfType(ctx, tokenID, tokenType)
	if err != nil {
		if apperrors.Is(err, oauthDomain.ErrInvalidToken) {
			return nil, apperrors.Wrap(oauthDomain.ErrInvalidGrant, "unknown or expired grant")
		}
		return nil, err
	}
	return token, nil
}
