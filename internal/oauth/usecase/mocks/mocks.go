// Package mocks provides mock implementations of the OAuth use cases for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
)

// MockTokenUseCase is a mock implementation of TokenUseCase for testing.
type MockTokenUseCase struct {
	mock.Mock
}

func tokenResult(args mock.Arguments) (*oauthDomain.Token, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.Token), args.Error(1)
}

// GrantAuthorizationCode mocks the GrantAuthorizationCode method.
func (m *MockTokenUseCase) GrantAuthorizationCode(
	ctx context.Context,
	input *oauthDomain.GrantAuthorizationCodeInput,
) (*oauthDomain.Token, error) {
	return tokenResult(m.Called(ctx, input))
}

// GrantOfflineRefreshToken mocks the GrantOfflineRefreshToken method.
func (m *MockTokenUseCase) GrantOfflineRefreshToken(
	ctx context.Context,
	code *oauthDomain.Token,
	redirectURI string,
) (*oauthDomain.Token, error) {
	return tokenResult(m.Called(ctx, code, redirectURI))
}

// GrantOnlineAccessToken mocks the GrantOnlineAccessToken method.
func (m *MockTokenUseCase) GrantOnlineAccessToken(
	ctx context.Context,
	code *oauthDomain.Token,
) (*oauthDomain.Token, error) {
	return tokenResult(m.Called(ctx, code))
}

// GrantOfflineAccessToken mocks the GrantOfflineAccessToken method.
func (m *MockTokenUseCase) GrantOfflineAccessToken(
	ctx context.Context,
	refreshToken *oauthDomain.Token,
) (*oauthDomain.Token, error) {
	return tokenResult(m.Called(ctx, refreshToken))
}

// GrantCASAccessToken mocks the GrantCASAccessToken method.
func (m *MockTokenUseCase) GrantCASAccessToken(
	ctx context.Context,
	grantorTicket *ticketDomain.Ticket,
	service string,
) (*oauthDomain.Token, error) {
	return tokenResult(m.Called(ctx, grantorTicket, service))
}

// GrantPersonalAccessToken mocks the GrantPersonalAccessToken method.
func (m *MockTokenUseCase) GrantPersonalAccessToken(
	ctx context.Context,
	personalToken *oauthDomain.PersonalToken,
) (*oauthDomain.Token, error) {
	return tokenResult(m.Called(ctx, personalToken))
}

// RevokeToken mocks the RevokeToken method.
func (m *MockTokenUseCase) RevokeToken(ctx context.Context, token *oauthDomain.Token) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

// RevokeClientTokens mocks the RevokeClientTokens method.
func (m *MockTokenUseCase) RevokeClientTokens(ctx context.Context, clientID, clientSecret string) (bool, error) {
	args := m.Called(ctx, clientID, clientSecret)
	return args.Bool(0), args.Error(1)
}

// RevokeClientPrincipalTokens mocks the RevokeClientPrincipalTokens method.
func (m *MockTokenUseCase) RevokeClientPrincipalTokens(
	ctx context.Context,
	accessToken *oauthDomain.Token,
) (bool, error) {
	args := m.Called(ctx, accessToken)
	return args.Bool(0), args.Error(1)
}

// GetToken mocks the GetToken method.
func (m *MockTokenUseCase) GetToken(ctx context.Context, tokenID string) (*oauthDomain.Token, error) {
	return tokenResult(m.Called(ctx, tokenID))
}

// GetTokenOfType mocks the GetTokenOfType method.
func (m *MockTokenUseCase) GetTokenOfType(
	ctx context.Context,
	tokenID string,
	tokenType oauthDomain.TokenType,
) (*oauthDomain.Token, error) {
	return tokenResult(m.Called(ctx, tokenID, tokenType))
}

// GetRefreshToken mocks the GetRefreshToken method.
func (m *MockTokenUseCase) GetRefreshToken(
	ctx context.Context,
	clientID, principalID string,
) (*oauthDomain.Token, error) {
	return tokenResult(m.Called(ctx, clientID, principalID))
}

// IsAccessToken mocks the IsAccessToken method.
func (m *MockTokenUseCase) IsAccessToken(tokenID string) bool {
	return m.Called(tokenID).Bool(0)
}

// IsRefreshToken mocks the IsRefreshToken method.
func (m *MockTokenUseCase) IsRefreshToken(tokenID string) bool {
	return m.Called(tokenID).Bool(0)
}

// GetScopes mocks the GetScopes method.
func (m *MockTokenUseCase) GetScopes(names []string) map[string]oauthDomain.Scope {
	args := m.Called(names)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[string]oauthDomain.Scope)
}

// GetDefaultScope mocks the GetDefaultScope method.
func (m *MockTokenUseCase) GetDefaultScope() map[string]oauthDomain.Scope {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[string]oauthDomain.Scope)
}

// GetClientMetadata mocks the GetClientMetadata method.
func (m *MockTokenUseCase) GetClientMetadata(
	ctx context.Context,
	clientID, clientSecret string,
) (*oauthDomain.ClientMetadata, error) {
	args := m.Called(ctx, clientID, clientSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.ClientMetadata), args.Error(1)
}

// GetPrincipalMetadata mocks the GetPrincipalMetadata method.
func (m *MockTokenUseCase) GetPrincipalMetadata(
	ctx context.Context,
	accessToken *oauthDomain.Token,
) (map[string]*oauthDomain.PrincipalClientMetadata, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*oauthDomain.PrincipalClientMetadata), args.Error(1)
}

// MockClientUseCase is a mock implementation of ClientUseCase for testing.
type MockClientUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockClientUseCase) Create(
	ctx context.Context,
	input *oauthDomain.CreateClientInput,
) (*oauthDomain.CreateClientOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.CreateClientOutput), args.Error(1)
}

// Get mocks the Get method.
func (m *MockClientUseCase) Get(ctx context.Context, clientID string) (*oauthDomain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.Client), args.Error(1)
}

// Authenticate mocks the Authenticate method.
func (m *MockClientUseCase) Authenticate(
	ctx context.Context,
	clientID, clientSecret string,
) (*oauthDomain.Client, error) {
	args := m.Called(ctx, clientID, clientSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.Client), args.Error(1)
}

// MockPersonalTokenUseCase is a mock implementation of PersonalTokenUseCase for testing.
type MockPersonalTokenUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockPersonalTokenUseCase) Create(
	ctx context.Context,
	input *oauthDomain.CreatePersonalTokenInput,
) (*oauthDomain.PersonalToken, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.PersonalToken), args.Error(1)
}

// Get mocks the Get method.
func (m *MockPersonalTokenUseCase) Get(ctx context.Context, personalTokenID string) (*oauthDomain.PersonalToken, error) {
	args := m.Called(ctx, personalTokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauthDomain.PersonalToken), args.Error(1)
}
