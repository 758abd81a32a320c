// Package dto provides data transfer objects for the OAuth and CAS endpoints.
package dto

import (
	"strings"

	validation "github.com/jellydator/validation"

	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
	customValidation "github.com/allisson/casoauth/internal/validation"
)

// Supported grant_type values of the token endpoint.
const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeRefreshToken      = "refresh_token"
	GrantTypePersonalToken     = "personal_token"
)

// AuthorizeRequest is an approved authorization request.
// GrantorTicket is read from the TGC cookie when the parameter is absent.
type AuthorizeRequest struct {
	ResponseType  string `json:"response_type"  form:"response_type"`
	ClientID      string `json:"client_id"      form:"client_id"`
	RedirectURI   string `json:"redirect_uri"   form:"redirect_uri"`
	AccessType    string `json:"access_type"    form:"access_type"`
	Scope         string `json:"scope"          form:"scope"`
	State         string `json:"state"          form:"state"`
	Approved      bool   `json:"approved"       form:"approved"`
	GrantorTicket string `json:"grantor_ticket" form:"grantor_ticket"`
}

// Validate checks the authorization request. An empty access_type means online.
func (r *AuthorizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ResponseType, validation.Required, validation.In("code")),
		validation.Field(&r.ClientID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.RedirectURI, validation.Required, customValidation.AbsoluteURL),
		validation.Field(&r.AccessType, validation.In(
			string(oauthDomain.AccessVariantOnline),
			string(oauthDomain.AccessVariantOffline),
		)),
		validation.Field(&r.State, validation.Length(0, 1024)),
	)
}

// Variant returns the requested access variant, online unless offline was asked for.
func (r *AuthorizeRequest) Variant() oauthDomain.AccessVariant {
	if r.AccessType == string(oauthDomain.AccessVariantOffline) {
		return oauthDomain.AccessVariantOffline
	}
	return oauthDomain.AccessVariantOnline
}

// Scopes splits the space-delimited scope parameter.
func (r *AuthorizeRequest) Scopes() []string {
	return strings.Fields(r.Scope)
}

// TokenRequest carries the parameters of every supported grant type.
type TokenRequest struct {
	GrantType     string `json:"grant_type"     form:"grant_type"`
	ClientID      string `json:"client_id"      form:"client_id"`
	ClientSecret  string `json:"client_secret"  form:"client_secret"`
	Code          string `json:"code"           form:"code"`
	RedirectURI   string `json:"redirect_uri"   form:"redirect_uri"`
	RefreshToken  string `json:"refresh_token"  form:"refresh_token"`
	PersonalToken string `json:"personal_token" form:"personal_token"`
}

// Validate checks the parameters required by the grant type.
func (r *TokenRequest) Validate() error {
	isCode := r.GrantType == GrantTypeAuthorizationCode
	isRefresh := r.GrantType == GrantTypeRefreshToken
	isPersonal := r.GrantType == GrantTypePersonalToken

	return validation.ValidateStruct(r,
		validation.Field(&r.GrantType, validation.Required),
		validation.Field(&r.ClientID,
			validation.When(isCode || isRefresh, validation.Required, customValidation.NotBlank),
		),
		validation.Field(&r.ClientSecret,
			validation.When(isCode || isRefresh, validation.Required),
		),
		validation.Field(&r.Code,
			validation.When(isCode, validation.Required, customValidation.HasPrefix(oauthDomain.AuthorizationCodePrefix)),
		),
		validation.Field(&r.RedirectURI,
			validation.When(isCode, validation.Required, customValidation.AbsoluteURL),
		),
		validation.Field(&r.RefreshToken,
			validation.When(isRefresh, validation.Required, customValidation.HasPrefix(oauthDomain.RefreshTokenPrefix)),
		),
		validation.Field(&r.PersonalToken,
			validation.When(isPersonal, validation.Required, customValidation.HasPrefix(oauthDomain.AccessTokenPrefix)),
		),
	)
}

// SupportedGrantType reports whether the grant type is handled by the token endpoint.
func (r *TokenRequest) SupportedGrantType() bool {
	switch r.GrantType {
	case GrantTypeAuthorizationCode, GrantTypeRefreshToken, GrantTypePersonalToken:
		return true
	default:
		return false
	}
}

// RevokeTokenRequest revokes a single token.
type RevokeTokenRequest struct {
	Token string `json:"token" form:"token"`
}

// Validate checks the revocation request.
func (r *RevokeTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required, customValidation.NotBlank),
	)
}

// ClientCredentialsRequest carries client credentials in the request body.
type ClientCredentialsRequest struct {
	ClientID     string `json:"client_id"     form:"client_id"`
	ClientSecret string `json:"client_secret" form:"client_secret"`
}

// Validate checks the client credentials.
func (r *ClientCredentialsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ClientID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.ClientSecret, validation.Required),
	)
}

// ServiceValidateRequest is a native service ticket validation. When ClientID is set
// and the service is that client's redirect URI, an access token is returned as well.
type ServiceValidateRequest struct {
	Ticket   string `form:"ticket"`
	Service  string `form:"service"`
	ClientID string `form:"client_id"`
}

// Validate checks the validation request.
func (r *ServiceValidateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Ticket, validation.Required, customValidation.HasPrefix(ticketDomain.ServiceTicketPrefix)),
		validation.Field(&r.Service, validation.Required, customValidation.NotBlank),
	)
}
