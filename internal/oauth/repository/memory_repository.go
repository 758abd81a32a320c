package repository

import (
	"context"
	"sort"
	"sync"

	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	oauthUseCase "github.com/allisson/casoauth/internal/oauth/usecase"
)

var (
	_ oauthUseCase.TokenRepository         = (*MemoryTokenRepository)(nil)
	_ oauthUseCase.TokenRepository         = (*PostgreSQLTokenRepository)(nil)
	_ oauthUseCase.TokenRepository         = (*MySQLTokenRepository)(nil)
	_ oauthUseCase.ClientRepository        = (*MemoryClientRepository)(nil)
	_ oauthUseCase.ClientRepository        = (*PostgreSQLClientRepository)(nil)
	_ oauthUseCase.ClientRepository        = (*MySQLClientRepository)(nil)
	_ oauthUseCase.PersonalTokenRepository = (*MemoryPersonalTokenRepository)(nil)
	_ oauthUseCase.PersonalTokenRepository = (*PostgreSQLPersonalTokenRepository)(nil)
	_ oauthUseCase.PersonalTokenRepository = (*MySQLPersonalTokenRepository)(nil)
)

// MemoryTokenRepository keeps Token records in process memory, keyed by id digest.
type MemoryTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]oauthDomain.Token
}

// Create stores a copy of the token.
func (m *MemoryTokenRepository) Create(ctx context.Context, token *oauthDomain.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idHash := oauthDomain.HashTokenID(token.ID)
	if _, ok := m.tokens[idHash]; ok {
		return oauthDomain.ErrTokenAlreadyExists
	}
	stored := cloneToken(token)
	stored.ID = ""
	stored.IDHash = idHash
	m.tokens[idHash] = stored
	return nil
}

// Get returns a copy of the token.
func (m *MemoryTokenRepository) Get(ctx context.Context, tokenID string) (*oauthDomain.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	token, ok := m.tokens[oauthDomain.HashTokenID(tokenID)]
	if !ok {
		return nil, oauthDomain.ErrTokenNotFound
	}
	clone := cloneToken(&token)
	clone.ID = tokenID
	return &clone, nil
}

// DeleteByTicketID removes every token anchored to the ticket.
func (m *MemoryTokenRepository) DeleteByTicketID(ctx context.Context, ticketID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for idHash, token := range m.tokens {
		if token.TicketID == ticketID {
			delete(m.tokens, idHash)
			count++
		}
	}
	return count, nil
}

// ListByClient returns every token issued to the client.
func (m *MemoryTokenRepository) ListByClient(ctx context.Context, clientID string) ([]*oauthDomain.Token, error) {
	return m.filter(func(token *oauthDomain.Token) bool {
		return token.ClientID == clientID
	}), nil
}

// ListByClientPrincipal returns every token issued to the client for the principal.
func (m *MemoryTokenRepository) ListByClientPrincipal(
	ctx context.Context,
	clientID, principalID string,
) ([]*oauthDomain.Token, error) {
	return m.filter(func(token *oauthDomain.Token) bool {
		return token.ClientID == clientID && token.PrincipalID == principalID
	}), nil
}

// ListByPrincipal returns every token issued for the principal.
func (m *MemoryTokenRepository) ListByPrincipal(
	ctx context.Context,
	principalID string,
) ([]*oauthDomain.Token, error) {
	return m.filter(func(token *oauthDomain.Token) bool {
		return token.PrincipalID == principalID
	}), nil
}

// CountPrincipalsByClient counts distinct principals with refresh or access tokens of the client.
func (m *MemoryTokenRepository) CountPrincipalsByClient(ctx context.Context, clientID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	principals := make(map[string]struct{})
	for _, token := range m.tokens {
		if token.ClientID != clientID || token.Type == oauthDomain.TokenTypeAuthorizationCode {
			continue
		}
		principals[token.PrincipalID] = struct{}{}
	}
	return int64(len(principals)), nil
}

// Len returns the number of stored tokens.
func (m *MemoryTokenRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.tokens)
}

func (m *MemoryTokenRepository) filter(match func(token *oauthDomain.Token) bool) []*oauthDomain.Token {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tokens := make([]*oauthDomain.Token, 0)
	for _, token := range m.tokens {
		if match(&token) {
			clone := cloneToken(&token)
			tokens = append(tokens, &clone)
		}
	}

	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].CreatedAt.Equal(tokens[j].CreatedAt) {
			return tokens[i].IDHash < tokens[j].IDHash
		}
		return tokens[i].CreatedAt.Before(tokens[j].CreatedAt)
	})
	return tokens
}

func cloneToken(token *oauthDomain.Token) oauthDomain.Token {
	clone := *token
	clone.Scopes = append([]string(nil), token.Scopes...)
	return clone
}

// NewMemoryTokenRepository creates an empty in-memory Token repository.
func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{tokens: make(map[string]oauthDomain.Token)}
}

// MemoryClientRepository keeps Client records in process memory.
type MemoryClientRepository struct {
	mu      sync.RWMutex
	clients map[string]oauthDomain.Client
}

// Create stores a copy of the client.
func (m *MemoryClientRepository) Create(ctx context.Context, client *oauthDomain.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		return oauthDomain.ErrClientAlreadyExists
	}
	m.clients[client.ID] = *client
	return nil
}

// Get returns a copy of the client.
func (m *MemoryClientRepository) Get(ctx context.Context, clientID string) (*oauthDomain.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	client, ok := m.clients[clientID]
	if !ok {
		return nil, oauthDomain.ErrClientNotFound
	}
	return &client, nil
}

// NewMemoryClientRepository creates an empty in-memory Client repository.
func NewMemoryClientRepository() *MemoryClientRepository {
	return &MemoryClientRepository{clients: make(map[string]oauthDomain.Client)}
}

// MemoryPersonalTokenRepository keeps PersonalToken records in process memory.
type MemoryPersonalTokenRepository struct {
	mu             sync.RWMutex
	personalTokens map[string]oauthDomain.PersonalToken
}

// Create stores a copy of the personal token.
func (m *MemoryPersonalTokenRepository) Create(
	ctx context.Context,
	personalToken *oauthDomain.PersonalToken,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idHash := oauthDomain.HashTokenID(personalToken.ID)
	clone := *personalToken
	clone.ID = ""
	clone.IDHash = idHash
	clone.Scopes = append([]string(nil), personalToken.Scopes...)
	m.personalTokens[idHash] = clone
	return nil
}

// Get returns a copy of the personal token.
func (m *MemoryPersonalTokenRepository) Get(
	ctx context.Context,
	personalTokenID string,
) (*oauthDomain.PersonalToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	personalToken, ok := m.personalTokens[oauthDomain.HashTokenID(personalTokenID)]
	if !ok {
		return nil, oauthDomain.ErrPersonalTokenNotFound
	}
	personalToken.ID = personalTokenID
	personalToken.Scopes = append([]string(nil), personalToken.Scopes...)
	return &personalToken, nil
}

// NewMemoryPersonalTokenRepository creates an empty in-memory PersonalToken repository.
func NewMemoryPersonalTokenRepository() *MemoryPersonalTokenRepository {
	return &MemoryPersonalTokenRepository{personalTokens: make(map[string]oauthDomain.PersonalToken)}
}
