package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	"github.com/allisson/casoauth/internal/oauth/http/dto"
	usecaseMocks "github.com/allisson/casoauth/internal/oauth/usecase/mocks"
)

func setupRevokeRouter(t *testing.T) (*gin.Engine, *usecaseMocks.MockTokenUseCase) {
	t.Helper()

	tokens := &usecaseMocks.MockTokenUseCase{}
	handler := NewRevokeHandler(tokens, discardLogger())

	router := gin.New()
	router.POST("/v1/oauth2/revoke", handler.RevokeTokenHandler)
	router.POST("/v1/oauth2/revoke/client", handler.RevokeClientTokensHandler)
	router.DELETE("/v1/oauth2/authorizations", BearerTokenMiddleware(tokens, discardLogger()),
		handler.RevokeAuthorizationHandler)

	t.Cleanup(func() { tokens.AssertExpectations(t) })
	return router, tokens
}

func TestRevokeHandler_RevokeToken(t *testing.T) {
	t.Run("revokes a live token", func(t *testing.T) {
		router, tokens := setupRevokeRouter(t)
		token := accessToken("AT-1")

		tokens.On("GetToken", mock.Anything, "AT-1").Return(token, nil).Once()
		tokens.On("RevokeToken", mock.Anything, token).Return(true, nil).Once()

		w := serve(router, postForm("/v1/oauth2/revoke", url.Values{"token": {"AT-1"}}))

		assert.Equal(t, http.StatusOK, w.Code)
		var body dto.RevokeResponse
		decodeBody(t, w, &body)
		assert.True(t, body.Revoked)
	})

	t.Run("unknown token answers 200", func(t *testing.T) {
		router, tokens := setupRevokeRouter(t)

		tokens.On("GetToken", mock.Anything, "RT-gone").Return(nil, oauthDomain.ErrInvalidToken).Once()

		w := serve(router, postForm("/v1/oauth2/revoke", url.Values{"token": {"RT-gone"}}))

		assert.Equal(t, http.StatusOK, w.Code)
		var body dto.RevokeResponse
		decodeBody(t, w, &body)
		assert.False(t, body.Revoked)
	})

	t.Run("missing token", func(t *testing.T) {
		router, _ := setupRevokeRouter(t)

		w := serve(router, postForm("/v1/oauth2/revoke", url.Values{}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRevokeHandler_RevokeClientTokens(t *testing.T) {
	values := url.Values{"client_id": {"acme"}, "client_secret": {"s3cr3t"}}

	t.Run("revokes every token of the client", func(t *testing.T) {
		router, tokens := setupRevokeRouter(t)

		tokens.On("RevokeClientTokens", mock.Anything, "acme", "s3cr3t").Return(true, nil).Once()

		w := serve(router, postForm("/v1/oauth2/revoke/client", values))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bad credentials", func(t *testing.T) {
		router, tokens := setupRevokeRouter(t)

		tokens.On("RevokeClientTokens", mock.Anything, "acme", "s3cr3t").Return(false, nil).Once()

		w := serve(router, postForm("/v1/oauth2/revoke/client", values))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var body oauthErrorBody
		decodeBody(t, w, &body)
		assert.Equal(t, "unauthorized_client", body.Error)
	})
}

func TestRevokeHandler_RevokeAuthorization(t *testing.T) {
	t.Run("revokes the pair behind the bearer token", func(t *testing.T) {
		router, tokens := setupRevokeRouter(t)
		token := accessToken("AT-1")

		tokens.On("GetTokenOfType", mock.Anything, "AT-1", oauthDomain.TokenTypeAccess).Return(token, nil).Once()
		tokens.On("RevokeClientPrincipalTokens", mock.Anything, token).Return(true, nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/v1/oauth2/authorizations", nil)
		req.Header.Set("Authorization", "Bearer AT-1")
		w := serve(router, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("token without a client", func(t *testing.T) {
		router, tokens := setupRevokeRouter(t)
		token := accessToken("AT-cas")
		token.ClientID = ""
		token.Variant = oauthDomain.AccessVariantCAS

		tokens.On("GetTokenOfType", mock.Anything, "AT-cas", oauthDomain.TokenTypeAccess).Return(token, nil).Once()
		tokens.On("RevokeClientPrincipalTokens", mock.Anything, token).
			Return(false, oauthDomain.ErrInvalidParameter).
			Once()

		req := httptest.NewRequest(http.MethodDelete, "/v1/oauth2/authorizations", nil)
		req.Header.Set("Authorization", "Bearer AT-cas")
		w := serve(router, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
