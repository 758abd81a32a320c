package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/casoauth/internal/errors"
	"github.com/allisson/casoauth/internal/httputil"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	"github.com/allisson/casoauth/internal/oauth/http/dto"
	oauthUseCase "github.com/allisson/casoauth/internal/oauth/usecase"
	customValidation "github.com/allisson/casoauth/internal/validation"
)

// RevokeHandler serves the revocation endpoints.
type RevokeHandler struct {
	tokenUseCase oauthUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewRevokeHandler creates a new revoke handler.
func NewRevokeHandler(tokenUseCase oauthUseCase.TokenUseCase, logger *slog.Logger) *RevokeHandler {
	return &RevokeHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// RevokeTokenHandler revokes one token by deleting its backing ticket.
// POST /v1/oauth2/revoke
//
// Unknown or already expired tokens answer 200 with revoked=false.
func (h *RevokeHandler) RevokeTokenHandler(c *gin.Context) {
	var req dto.RevokeTokenRequest
	if err := c.ShouldBind(&req); err != nil {
		httputil.WriteOAuthError(c, http.StatusBadRequest, httputil.OAuthErrorInvalidRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleOAuthErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ctx := c.Request.Context()

	token, err := h.tokenUseCase.GetToken(ctx, req.Token)
	if err != nil {
		if apperrors.Is(err, oauthDomain.ErrInvalidToken) {
			c.JSON(http.StatusOK, dto.RevokeResponse{Revoked: false})
			return
		}
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}

	revoked, err := h.tokenUseCase.RevokeToken(ctx, token)
	if err != nil {
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RevokeResponse{Revoked: revoked})
}

// RevokeClientTokensHandler revokes every refresh and access token of a client.
// POST /v1/oauth2/revoke/client
func (h *RevokeHandler) RevokeClientTokensHandler(c *gin.Context) {
	var req dto.ClientCredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		httputil.WriteOAuthError(c, http.StatusBadRequest, httputil.OAuthErrorInvalidRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleOAuthErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	revoked, err := h.tokenUseCase.RevokeClientTokens(c.Request.Context(), req.ClientID, req.ClientSecret)
	if err != nil {
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}
	if !revoked {
		httputil.HandleOAuthErrorGin(c, oauthDomain.ErrUnauthorizedGrant, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RevokeResponse{Revoked: true})
}

// RevokeAuthorizationHandler revokes the caller's authorization of the client that
// issued the bearer token: its refresh tokens and online access tokens.
// DELETE /v1/oauth2/authorizations
func (h *RevokeHandler) RevokeAuthorizationHandler(c *gin.Context) {
	accessToken, ok := GetAccessToken(c.Request.Context())
	if !ok {
		httputil.HandleOAuthErrorGin(c, oauthDomain.ErrInvalidToken, h.logger)
		return
	}

	revoked, err := h.tokenUseCase.RevokeClientPrincipalTokens(c.Request.Context(), accessToken)
	if err != nil {
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RevokeResponse{Revoked: revoked})
}
