package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/casoauth/internal/errors"
)

// OAuth error codes from RFC 6749 section 5.2 and RFC 6750 section 3.1.
const (
	OAuthErrorInvalidRequest       = "invalid_request"
	OAuthErrorInvalidClient        = "invalid_client"
	OAuthErrorInvalidGrant         = "invalid_grant"
	OAuthErrorUnauthorizedClient   = "unauthorized_client"
	OAuthErrorUnsupportedGrantType = "unsupported_grant_type"
	OAuthErrorInvalidToken         = "invalid_token"
	OAuthErrorAccessDenied         = "access_denied"
	OAuthErrorServerError          = "server_error"
)

// OAuthErrorResponse is the error body of the OAuth endpoints.
type OAuthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// OAuthError maps a domain error to an HTTP status and OAuth error code.
func OAuthError(err error) (int, string) {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest, OAuthErrorInvalidRequest
	case apperrors.Is(err, apperrors.ErrInvalidGrant):
		return http.StatusBadRequest, OAuthErrorInvalidGrant
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, OAuthErrorInvalidToken
	case apperrors.Is(err, apperrors.ErrForbidden):
		return http.StatusUnauthorized, OAuthErrorUnauthorizedClient
	case apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusBadRequest, OAuthErrorInvalidRequest
	default:
		return http.StatusInternalServerError, OAuthErrorServerError
	}
}

// HandleOAuthErrorGin writes an OAuth error body for err. Internal errors are not described.
func HandleOAuthErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	statusCode, code := OAuthError(err)
	response := OAuthErrorResponse{Error: code}
	if statusCode != http.StatusInternalServerError {
		response.ErrorDescription = err.Error()
	}

	if logger != nil {
		level := slog.LevelInfo
		if statusCode == http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "oauth request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", code),
			slog.Any("error", err),
		)
	}

	if statusCode == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Bearer error="`+code+`"`)
	}
	c.JSON(statusCode, response)
}

// WriteOAuthError writes an OAuth error body with an explicit code.
func WriteOAuthError(c *gin.Context, statusCode int, code, description string) {
	c.JSON(statusCode, OAuthErrorResponse{Error: code, ErrorDescription: description})
}
