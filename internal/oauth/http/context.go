package http

import (
	"context"

	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
)

type accessTokenKey struct{}

// WithAccessToken stores the authenticated access token in the context.
func WithAccessToken(ctx context.Context, token *oauthDomain.Token) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// GetAccessToken retrieves the access token stored by BearerTokenMiddleware.
func GetAccessToken(ctx context.Context) (*oauthDomain.Token, bool) {
	token, ok := ctx.Value(accessTokenKey{}).(*oauthDomain.Token)
	return token, ok
}
