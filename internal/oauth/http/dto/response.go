package dto

import (
	"time"

	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
)

// TokenTypeBearer is the only token_type issued.
const TokenTypeBearer = "bearer"

// TokenResponse is the body returned by every grant.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// MapTokenResponse builds the grant response. refreshToken may be nil.
// expires_in reports the remaining lifetime of the access token's backing ticket.
func MapTokenResponse(accessToken, refreshToken *oauthDomain.Token, now time.Time) TokenResponse {
	response := TokenResponse{
		AccessToken: accessToken.ID,
		ExpiresIn:   accessToken.ExpiresIn(now),
		TokenType:   TokenTypeBearer,
	}
	if refreshToken != nil {
		response.RefreshToken = refreshToken.ID
	}
	return response
}

// AuthorizeResponse carries the client callback with the code and state appended.
type AuthorizeResponse struct {
	RedirectURI string `json:"redirect_uri"`
}

// RevokeResponse reports whether anything was revoked.
type RevokeResponse struct {
	Revoked bool `json:"revoked"`
}

// ProfileResponse is the protected-resource view of an access token.
type ProfileResponse struct {
	PrincipalID string   `json:"principal_id"`
	ClientID    string   `json:"client_id,omitempty"`
	Variant     string   `json:"variant"`
	Scopes      []string `json:"scopes"`
	ExpiresIn   int64    `json:"expires_in"`
}

// MapProfileResponse converts an access token into a ProfileResponse.
func MapProfileResponse(token *oauthDomain.Token, now time.Time) ProfileResponse {
	scopes := token.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return ProfileResponse{
		PrincipalID: token.PrincipalID,
		ClientID:    token.ClientID,
		Variant:     string(token.Variant),
		Scopes:      scopes,
		ExpiresIn:   token.ExpiresIn(now),
	}
}

// PrincipalMetadataResponse lists the clients a principal has authorized, keyed by client id.
type PrincipalMetadataResponse struct {
	Clients map[string]*oauthDomain.PrincipalClientMetadata `json:"clients"`
}

// ServiceValidateResponse is the result of a successful service ticket validation.
type ServiceValidateResponse struct {
	PrincipalID string            `json:"principal_id"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	AccessToken string            `json:"access_token,omitempty"`
	ExpiresIn   int64             `json:"expires_in,omitempty"`
	TokenType   string            `json:"token_type,omitempty"`
}

// MapServiceValidateResponse converts the grantor ticket and optional access token.
func MapServiceValidateResponse(
	grantor *ticketDomain.Ticket,
	accessToken *oauthDomain.Token,
	now time.Time,
) ServiceValidateResponse {
	response := ServiceValidateResponse{
		PrincipalID: grantor.Authentication.PrincipalID,
		Attributes:  grantor.Authentication.Attributes,
	}
	if accessToken != nil {
		response.AccessToken = accessToken.ID
		response.ExpiresIn = accessToken.ExpiresIn(now)
		response.TokenType = TokenTypeBearer
	}
	return response
}
