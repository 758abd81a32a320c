package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/casoauth/internal/httputil"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	"github.com/allisson/casoauth/internal/oauth/http/dto"
	oauthUseCase "github.com/allisson/casoauth/internal/oauth/usecase"
	customValidation "github.com/allisson/casoauth/internal/validation"
)

// MetadataHandler serves client and principal metadata.
type MetadataHandler struct {
	tokenUseCase oauthUseCase.TokenUseCase
	now          func() time.Time
	logger       *slog.Logger
}

// NewMetadataHandler creates a new metadata handler.
func NewMetadataHandler(tokenUseCase oauthUseCase.TokenUseCase, logger *slog.Logger) *MetadataHandler {
	return &MetadataHandler{
		tokenUseCase: tokenUseCase,
		now:          time.Now,
		logger:       logger,
	}
}

// ClientMetadataHandler returns a client's metadata and the number of principals
// that authorized it.
// GET /v1/oauth2/metadata/client
//
// Credentials come from HTTP Basic auth or the client_id and client_secret parameters.
func (h *MetadataHandler) ClientMetadataHandler(c *gin.Context) {
	var req dto.ClientCredentialsRequest
	if clientID, clientSecret, ok := c.Request.BasicAuth(); ok {
		req.ClientID, req.ClientSecret = clientID, clientSecret
	} else {
		req.ClientID = c.Query("client_id")
		req.ClientSecret = c.Query("client_secret")
	}
	if err := req.Validate(); err != nil {
		httputil.HandleOAuthErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	metadata, err := h.tokenUseCase.GetClientMetadata(c.Request.Context(), req.ClientID, req.ClientSecret)
	if err != nil {
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, metadata)
}

// PrincipalMetadataHandler lists the clients the bearer's principal has authorized.
// GET /v1/oauth2/metadata/principal
func (h *MetadataHandler) PrincipalMetadataHandler(c *gin.Context) {
	accessToken, ok := GetAccessToken(c.Request.Context())
	if !ok {
		httputil.HandleOAuthErrorGin(c, oauthDomain.ErrInvalidToken, h.logger)
		return
	}

	clients, err := h.tokenUseCase.GetPrincipalMetadata(c.Request.Context(), accessToken)
	if err != nil {
		httputil.HandleOAuthErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.PrincipalMetadataResponse{Clients: clients})
}

// ProfileHandler describes the bearer token.
// GET /v1/oauth2/profile
func (h *MetadataHandler) ProfileHandler(c *gin.Context) {
	accessToken, ok := GetAccessToken(c.Request.Context())
	if !ok {
		httputil.HandleOAuthErrorGin(c, oauthDomain.ErrInvalidToken, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapProfileResponse(accessToken, h.now()))
}
