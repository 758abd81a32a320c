package http

import (
	"github.com/gin-gonic/gin"
)

// Routes mounts the OAuth and native validation endpoints.
type Routes struct {
	Authorize       *AuthorizeHandler
	Token           *TokenHandler
	Revoke          *RevokeHandler
	Metadata        *MetadataHandler
	ServiceValidate *ServiceValidateHandler
	Bearer          gin.HandlerFunc
	// TokenRateLimit guards the token endpoint. Nil disables it.
	TokenRateLimit gin.HandlerFunc
}

// RegisterRoutes mounts the endpoints under group.
func (r *Routes) RegisterRoutes(group *gin.RouterGroup) {
	oauth := group.Group("/oauth2")
	{
		oauth.POST("/authorize", r.Authorize.AuthorizeHandler)

		token := []gin.HandlerFunc{r.Token.TokenHandler}
		if r.TokenRateLimit != nil {
			token = append([]gin.HandlerFunc{r.TokenRateLimit}, token...)
		}
		oauth.POST("/token", token...)

		oauth.POST("/revoke", r.Revoke.RevokeTokenHandler)
		oauth.POST("/revoke/client", r.Revoke.RevokeClientTokensHandler)
		oauth.GET("/metadata/client", r.Metadata.ClientMetadataHandler)

		bearer := oauth.Group("", r.Bearer)
		bearer.DELETE("/authorizations", r.Revoke.RevokeAuthorizationHandler)
		bearer.GET("/metadata/principal", r.Metadata.PrincipalMetadataHandler)
		bearer.GET("/profile", r.Metadata.ProfileHandler)
	}

	group.GET("/cas/validate", r.ServiceValidate.ServiceValidateHandler)
}
