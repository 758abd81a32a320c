package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/allisson/casoauth/internal/httputil"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	oauthUseCase "github.com/allisson/casoauth/internal/oauth/usecase"
)

const bearerPrefix = "bearer "

// BearerTokenMiddleware authenticates requests with an access token.
//
// The token is read from "Authorization: Bearer <id>" (case-insensitive scheme) or,
// when the header is absent, from the access_token query or form parameter. The live
// token is stored in the request context for GetAccessToken.
//
// Missing, malformed, unknown and expired tokens all answer 401 invalid_token.
func BearerTokenMiddleware(tokenUseCase oauthUseCase.TokenUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenID, ok := extractBearerToken(c)
		if !ok {
			logger.Debug("bearer authentication failed: missing or malformed token")
			httputil.HandleOAuthErrorGin(c, oauthDomain.ErrInvalidToken, logger)
			c.Abort()
			return
		}

		token, err := tokenUseCase.GetTokenOfType(c.Request.Context(), tokenID, oauthDomain.TokenTypeAccess)
		if err != nil {
			httputil.HandleOAuthErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithAccessToken(c.Request.Context(), token))
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			return "", false
		}
		tokenID := strings.TrimSpace(header[len(bearerPrefix):])
		return tokenID, tokenID != ""
	}

	if tokenID := c.Query("access_token"); tokenID != "" {
		return tokenID, true
	}
	if tokenID := c.PostForm("access_token"); tokenID != "" {
		return tokenID, true
	}
	return "", false
}
