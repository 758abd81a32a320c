package http

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/casoauth/internal/errors"
	"github.com/allisson/casoauth/internal/httputil"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	"github.com/allisson/casoauth/internal/oauth/http/dto"
	oauthUseCase "github.com/allisson/casoauth/internal/oauth/usecase"
	customValidation "github.com/allisson/casoauth/internal/validation"
)

// GrantorTicketCookie is the cookie holding the user's grantor ticket id.
const GrantorTicketCookie = "TGC"

// AuthorizeHandler serves the authorization endpoint.
type AuthorizeHandler struct {
	tokenUseCase  oauthUseCase.TokenUseCase
	clientUseCase oauthUseCase.ClientUseCase
	logger        *slog.Logger
}

// NewAuthorizeHandler creates a new authorize handler.
func NewAuthorizeHandler(
	tokenUseCase oauthUseCase.TokenUseCase,
	clientUseCase oauthUseCase.ClientUseCase,
	logger *slog.Logger,
) *AuthorizeHandler {
	return &AuthorizeHandler{
		tokenUseCase:  tokenUseCase,
		clientUseCase: clientUseCase,
		logger:        logger,
	}
}

// AuthorizeHandler issues an authorization code for a logged-in user.
// POST /v1/oauth2/authorize
//
// The user's grantor ticket comes from the TGC cookie or the grantor_ticket parameter.
// Clients without auto-approve need approved=true. The response carries the client
// callback with code and state appended.
func (h *AuthorizeHandler) AuthorizeHandler(c *gin.Context) {
	var req dto.AuthorizeRequest
	if err := c.ShouldBind(&req); err != nil {
		httputil.WriteOAuthError(c, http.StatusBadRequest, httputil.OAuthErrorInvalidRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleOAuthErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ctx := c.Request.Context()

	client, err := h.clientUseCase.Get(ctx, req.ClientID)
	if err != nil {
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}
	if client.RedirectURI != req.RedirectURI {
		httputil.HandleOAuthErrorGin(c,
			apperrors.Wrap(oauthDomain.ErrInvalidParameter, "redirect_uri does not match the registered one"),
			h.logger)
		return
	}

	grantorTicketID := req.GrantorTicket
	if cookie, err := c.Cookie(GrantorTicketCookie); err == nil && cookie != "" {
		grantorTicketID = cookie
	}
	if grantorTicketID == "" {
		httputil.WriteOAuthError(c, http.StatusUnauthorized, httputil.OAuthErrorAccessDenied, "login required")
		return
	}

	if !client.AutoApprove && !req.Approved {
		httputil.WriteOAuthError(c, http.StatusForbidden, httputil.OAuthErrorAccessDenied,
			"the user has not approved the request")
		return
	}

	code, err := h.tokenUseCase.GrantAuthorizationCode(ctx, &oauthDomain.GrantAuthorizationCodeInput{
		Variant:         req.Variant(),
		ClientID:        client.ID,
		GrantorTicketID: grantorTicketID,
		RedirectURI:     req.RedirectURI,
		Scopes:          req.Scopes(),
	})
	if err != nil {
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}

	if code.Variant == oauthDomain.AccessVariantOffline {
		h.logExistingRefreshToken(c, code)
	}

	callback, err := url.Parse(req.RedirectURI)
	if err != nil {
		httputil.HandleOAuthErrorGin(c, apperrors.Wrap(oauthDomain.ErrInvalidParameter, "invalid redirect_uri"), h.logger)
		return
	}
	query := callback.Query()
	query.Set("code", code.ID)
	if req.State != "" {
		query.Set("state", req.State)
	}
	callback.RawQuery = query.Encode()

	c.JSON(http.StatusOK, dto.AuthorizeResponse{RedirectURI: callback.String()})
}

// logExistingRefreshToken records when an offline grant is repeated while a live
// refresh token already exists for the pair. The new code still yields a new refresh token.
func (h *AuthorizeHandler) logExistingRefreshToken(c *gin.Context, code *oauthDomain.Token) {
	existing, err := h.tokenUseCase.GetRefreshToken(c.Request.Context(), code.ClientID, code.PrincipalID)
	if err != nil {
		if !apperrors.Is(err, oauthDomain.ErrTokenNotFound) {
			h.logger.Warn("failed to look up existing refresh token",
				slog.String("client_id", code.ClientID),
				slog.Any("error", err),
			)
		}
		return
	}

	h.logger.Info("offline access granted again while a refresh token is live",
		slog.String("client_id", code.ClientID),
		slog.String("principal_id", code.PrincipalID),
		slog.Time("refresh_token_expires_at", existing.ExpiresAt),
	)
}
