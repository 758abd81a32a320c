package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	auditDomain "github.com/allisson/casoauth/internal/audit/domain"
	auditRepository "github.com/allisson/casoauth/internal/audit/repository"
	auditService "github.com/allisson/casoauth/internal/audit/service"
	auditUseCase "github.com/allisson/casoauth/internal/audit/usecase"
	auditMocks "github.com/allisson/casoauth/internal/audit/usecase/mocks"
	"github.com/allisson/casoauth/internal/config"
	"github.com/allisson/casoauth/internal/database"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	oauthRepository "github.com/allisson/casoauth/internal/oauth/repository"
	oauthService "github.com/allisson/casoauth/internal/oauth/service"
	oauthUseCase "github.com/allisson/casoauth/internal/oauth/usecase"
	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
	ticketRepository "github.com/allisson/casoauth/internal/ticket/repository"
	ticketService "github.com/allisson/casoauth/internal/ticket/service"
	ticketUseCase "github.com/allisson/casoauth/internal/ticket/usecase"
)

const (
	acmeRedirectURI = "https://acme.example/cb"
	acmeSecret      = "s3cr3t"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testClock is a settable clock shared by the ticket layer of an engine fixture.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type engineFixture struct {
	engine    oauthUseCase.TokenUseCase
	tickets   ticketUseCase.TicketUseCase
	registry  *ticketRepository.MemoryTicketRegistry
	tokenRepo *oauthRepository.MemoryTokenRepository
	clients   oauthUseCase.ClientUseCase
	auditLogs auditUseCase.AuditLogUseCase
	clock     *testClock
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	auditLogs := auditUseCase.NewAuditLogUseCase(
		auditRepository.NewMemoryAuditLogRepository(),
		auditService.NewAuditSigner(),
		[]byte("audit-signing-key"),
	)
	return newEngineFixtureWithAudit(t, auditLogs)
}

func newEngineFixtureWithAudit(t *testing.T, auditLogs oauthUseCase.AuditRecorder) *engineFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := &testClock{now: time.Now().UTC()}
	cfg := &config.Config{
		OAuthCodeTTL:                time.Minute,
		OAuthRefreshTokenTTL:        30 * 24 * time.Hour,
		OAuthOnlineAccessTokenTTL:   2 * time.Hour,
		OAuthOfflineAccessTokenTTL:  time.Hour,
		OAuthPersonalAccessTokenTTL: 2 * time.Hour,
	}

	registry := ticketRepository.NewMemoryTicketRegistry(24 * time.Hour)
	idGenerator := ticketService.NewIDGenerator()
	tickets := ticketUseCase.NewTicketUseCase(
		ticketUseCase.Config{GrantorTTL: 8 * time.Hour, ServiceTTL: 10 * time.Second, Now: clock.Now},
		registry,
		idGenerator,
		ticketService.NewAuthenticationPolicy([]string{"mallory"}),
		logger,
	)

	scopes, err := oauthService.ParseScopes("openid=Your identifier;profile=Your profile;email=Your email address")
	require.NoError(t, err)
	catalog, err := oauthService.NewScopeCatalog(scopes, []string{"openid"})
	require.NoError(t, err)
	secretService, err := oauthService.NewSecretService()
	require.NoError(t, err)

	tokenRepo := oauthRepository.NewMemoryTokenRepository()
	clientRepo := oauthRepository.NewMemoryClientRepository()

	for _, clientID := range []string{"acme", "globex"} {
		hashed, err := secretService.HashSecret(acmeSecret)
		require.NoError(t, err)
		require.NoError(t, clientRepo.Create(context.Background(), &oauthDomain.Client{
			ID:          clientID,
			Secret:      hashed,
			Name:        clientID + " app",
			RedirectURI: acmeRedirectURI,
			CreatedAt:   clock.Now(),
		}))
	}

	engine := oauthUseCase.NewTokenUseCase(
		cfg,
		database.NewMemoryTxManager(),
		tickets,
		tokenRepo,
		clientRepo,
		catalog,
		secretService,
		auditLogs,
		idGenerator,
		logger,
	)

	fixture := &engineFixture{
		engine:    engine,
		tickets:   tickets,
		registry:  registry,
		tokenRepo: tokenRepo,
		clients:   oauthUseCase.NewClientUseCase(clientRepo, secretService),
		clock:     clock,
	}
	if useCase, ok := auditLogs.(auditUseCase.AuditLogUseCase); ok {
		fixture.auditLogs = useCase
	}
	return fixture
}

// auditActions lists the recorded actions oldest first.
func (f *engineFixture) auditActions(t *testing.T) []auditDomain.Action {
	t.Helper()
	entries, err := f.auditLogs.List(context.Background(), 0, 100, nil, nil)
	require.NoError(t, err)
	actions := make([]auditDomain.Action, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		actions = append(actions, entries[i].Action)
	}
	return actions
}

func (f *engineFixture) login(t *testing.T, principalID string) *ticketDomain.Ticket {
	t.Helper()
	tgt, err := f.tickets.CreateGrantorTicket(
		context.Background(),
		ticketDomain.Authentication{PrincipalID: principalID, Method: "password"},
		0,
	)
	require.NoError(t, err)
	return tgt
}

func (f *engineFixture) code(
	t *testing.T,
	variant oauthDomain.AccessVariant,
	clientID string,
	tgt *ticketDomain.Ticket,
	scopes ...string,
) *oauthDomain.Token {
	t.Helper()
	code, err := f.engine.GrantAuthorizationCode(context.Background(), &oauthDomain.GrantAuthorizationCodeInput{
		Variant:         variant,
		ClientID:        clientID,
		GrantorTicketID: tgt.ID,
		RedirectURI:     acmeRedirectURI,
		Scopes:          scopes,
	})
	require.NoError(t, err)
	return code
}

func (f *engineFixture) onlineAccessToken(t *testing.T, clientID, principalID string) *oauthDomain.Token {
	t.Helper()
	code := f.code(t, oauthDomain.AccessVariantOnline, clientID, f.login(t, principalID))
	accessToken, err := f.engine.GrantOnlineAccessToken(context.Background(), code)
	require.NoError(t, err)
	return accessToken
}

func (f *engineFixture) refreshToken(t *testing.T, clientID, principalID string) *oauthDomain.Token {
	t.Helper()
	code := f.code(t, oauthDomain.AccessVariantOffline, clientID, f.login(t, principalID))
	refreshToken, err := f.engine.GrantOfflineRefreshToken(context.Background(), code, acmeRedirectURI)
	require.NoError(t, err)
	return refreshToken
}

func TestTokenUseCase_OfflineScenario(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tgt := f.login(t, "u1")
	code := f.code(t, oauthDomain.AccessVariantOffline, "acme", tgt, "profile")
	assert.Equal(t, oauthDomain.TokenTypeAuthorizationCode, code.Type)
	assert.Contains(t, code.ID, oauthDomain.AuthorizationCodePrefix)
	assert.Equal(t, "u1", code.PrincipalID)
	assert.Equal(t, []string{"openid", "profile"}, code.Scopes)

	refreshToken, err := f.engine.GrantOfflineRefreshToken(ctx, code, acmeRedirectURI)
	require.NoError(t, err)
	assert.True(t, f.engine.IsRefreshToken(refreshToken.ID))
	assert.Equal(t, "acme", refreshToken.ClientID)
	assert.Equal(t, "u1", refreshToken.PrincipalID)
	assert.NotEqual(t, tgt.ID, refreshToken.TicketID)

	first, err := f.engine.GrantOfflineAccessToken(ctx, refreshToken)
	require.NoError(t, err)
	second, err := f.engine.GrantOfflineAccessToken(ctx, refreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	for _, accessToken := range []*oauthDomain.Token{first, second} {
		got, err := f.engine.GetToken(ctx, accessToken.ID)
		require.NoError(t, err)
		assert.Equal(t, oauthDomain.AccessVariantOffline, got.Variant)
		assert.True(t, got.HasScope("profile"))
		assert.True(t, f.engine.IsAccessToken(got.ID))
	}

	got, err := f.engine.GetRefreshToken(ctx, "acme", "u1")
	require.NoError(t, err)
	assert.Equal(t, oauthDomain.HashTokenID(refreshToken.ID), got.IDHash)
	assert.Equal(t, refreshToken.TicketID, got.TicketID)
	assert.Equal(t, refreshToken.ExpiresAt, got.ExpiresAt)
}

func TestTokenUseCase_StoresIDDigests(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	refreshToken := f.refreshToken(t, "acme", "u1")
	accessToken, err := f.engine.GrantOfflineAccessToken(ctx, refreshToken)
	require.NoError(t, err)
	assert.Equal(t, oauthDomain.HashTokenID(accessToken.ID), accessToken.IDHash)

	stored, err := f.tokenRepo.ListByClient(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, token := range stored {
		assert.Empty(t, token.ID)
		assert.Contains(t, []string{refreshToken.IDHash, accessToken.IDHash}, token.IDHash)
	}

	got, err := f.engine.GetToken(ctx, accessToken.ID)
	require.NoError(t, err)
	assert.Equal(t, accessToken.ID, got.ID)

	_, err = f.engine.GetToken(ctx, "AT-"+accessToken.IDHash)
	assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)
}

func TestTokenUseCase_AuditTrail(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_GrantsAndRevocations", func(t *testing.T) {
		f := newEngineFixture(t)

		refreshToken := f.refreshToken(t, "acme", "u1")
		accessToken, err := f.engine.GrantOfflineAccessToken(ctx, refreshToken)
		require.NoError(t, err)
		revoked, err := f.engine.RevokeToken(ctx, accessToken)
		require.NoError(t, err)
		require.True(t, revoked)
		_, err = f.engine.RevokeClientTokens(ctx, "acme", acmeSecret)
		require.NoError(t, err)

		assert.Equal(t, []auditDomain.Action{
			auditDomain.ActionGrantAuthorizationCode,
			auditDomain.ActionGrantRefreshToken,
			auditDomain.ActionGrantOfflineAccessToken,
			auditDomain.ActionRevokeToken,
			auditDomain.ActionRevokeClientTokens,
		}, f.auditActions(t))

		entries, err := f.auditLogs.List(ctx, 0, 100, nil, nil)
		require.NoError(t, err)
		var grant *auditDomain.AuditLog
		for _, entry := range entries {
			if entry.Action == auditDomain.ActionGrantOfflineAccessToken {
				grant = entry
			}
		}
		require.NotNil(t, grant)
		assert.Equal(t, "acme", grant.ClientID)
		assert.Equal(t, "u1", grant.PrincipalID)
		assert.Equal(t, accessToken.IDHash, grant.TokenHash)
		assert.NotContains(t, grant.TokenHash, accessToken.ID)
		assert.True(t, grant.IsSigned)

		report, err := f.auditLogs.VerifyBatch(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(5), report.ValidCount)
		assert.Zero(t, report.InvalidCount)
	})

	t.Run("Success_ExpiryCollection", func(t *testing.T) {
		f := newEngineFixture(t)
		accessToken := f.onlineAccessToken(t, "acme", "u1")
		f.clock.Advance(3 * time.Hour)

		_, err := f.engine.GetToken(ctx, accessToken.ID)
		require.ErrorIs(t, err, oauthDomain.ErrInvalidToken)

		actions := f.auditActions(t)
		assert.Equal(t, auditDomain.ActionCollectExpired, actions[len(actions)-1])
	})

	t.Run("Success_RecorderFailureIsNotFatal", func(t *testing.T) {
		recorder := &auditMocks.MockAuditLogUseCase{}
		recorder.On("Record", mock.Anything, mock.Anything).Return(errors.New("audit store down"))
		f := newEngineFixtureWithAudit(t, recorder)

		accessToken := f.onlineAccessToken(t, "acme", "u1")
		_, err := f.engine.GetToken(ctx, accessToken.ID)
		assert.NoError(t, err)
		recorder.AssertNumberOfCalls(t, "Record", 2)
	})
}

func TestTokenUseCase_GrantAuthorizationCode(t *testing.T) {
	ctx := context.Background()

	t.Run("Error_InvalidVariant", func(t *testing.T) {
		f := newEngineFixture(t)
		tgt := f.login(t, "u1")

		_, err := f.engine.GrantAuthorizationCode(ctx, &oauthDomain.GrantAuthorizationCodeInput{
			Variant:         oauthDomain.AccessVariantPersonal,
			ClientID:        "acme",
			GrantorTicketID: tgt.ID,
			RedirectURI:     acmeRedirectURI,
		})
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidParameter)
	})

	t.Run("Error_BlankClient", func(t *testing.T) {
		f := newEngineFixture(t)
		tgt := f.login(t, "u1")

		_, err := f.engine.GrantAuthorizationCode(ctx, &oauthDomain.GrantAuthorizationCodeInput{
			Variant:         oauthDomain.AccessVariantOnline,
			ClientID:        "  ",
			GrantorTicketID: tgt.ID,
			RedirectURI:     acmeRedirectURI,
		})
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidParameter)
	})

	t.Run("Error_UnknownSession", func(t *testing.T) {
		f := newEngineFixture(t)

		_, err := f.engine.GrantAuthorizationCode(ctx, &oauthDomain.GrantAuthorizationCodeInput{
			Variant:         oauthDomain.AccessVariantOnline,
			ClientID:        "acme",
			GrantorTicketID: "TGT-missing",
			RedirectURI:     acmeRedirectURI,
		})
		assert.ErrorIs(t, err, oauthDomain.ErrUnauthorizedGrant)
		assert.Equal(t, 0, f.tokenRepo.Len())
	})

	t.Run("Error_ExpiredSession", func(t *testing.T) {
		f := newEngineFixture(t)
		tgt := f.login(t, "u1")
		f.clock.Advance(9 * time.Hour)

		_, err := f.engine.GrantAuthorizationCode(ctx, &oauthDomain.GrantAuthorizationCodeInput{
			Variant:         oauthDomain.AccessVariantOnline,
			ClientID:        "acme",
			GrantorTicketID: tgt.ID,
			RedirectURI:     acmeRedirectURI,
		})
		assert.ErrorIs(t, err, oauthDomain.ErrUnauthorizedGrant)
	})
}

func TestTokenUseCase_Redemption(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CascadeOnRedemption", func(t *testing.T) {
		f := newEngineFixture(t)
		code := f.code(t, oauthDomain.AccessVariantOnline, "acme", f.login(t, "u1"))

		accessToken, err := f.engine.GrantOnlineAccessToken(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, oauthDomain.AccessVariantOnline, accessToken.Variant)

		_, err = f.engine.GetTokenOfType(ctx, code.ID, oauthDomain.TokenTypeAuthorizationCode)
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)

		_, err = f.engine.GrantOnlineAccessToken(ctx, code)
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidGrant)
	})

	t.Run("Success_SingleRedemptionUnderConcurrency", func(t *testing.T) {
		f := newEngineFixture(t)
		code := f.code(t, oauthDomain.AccessVariantOffline, "acme", f.login(t, "u1"))

		const callers = 16
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			failures  int
		)
		for range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.engine.GrantOfflineRefreshToken(ctx, code, acmeRedirectURI)
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					successes++
					return
				}
				if assert.ErrorIs(t, err, oauthDomain.ErrInvalidGrant) {
					failures++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, callers-1, failures)

		_, err := f.engine.GrantOfflineRefreshToken(ctx, code, acmeRedirectURI)
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidGrant)

		tokens, err := f.tokenRepo.ListByClientPrincipal(ctx, "acme", "u1")
		require.NoError(t, err)
		assert.Len(t, tokens, 1)
	})

	t.Run("Error_RedirectMismatchKeepsCode", func(t *testing.T) {
		f := newEngineFixture(t)
		code := f.code(t, oauthDomain.AccessVariantOffline, "acme", f.login(t, "u1"))

		_, err := f.engine.GrantOfflineRefreshToken(ctx, code, "https://evil.example/cb")
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidGrant)

		_, err = f.engine.GrantOfflineRefreshToken(ctx, code, acmeRedirectURI)
		assert.NoError(t, err)
	})

	t.Run("Error_VariantMismatch", func(t *testing.T) {
		f := newEngineFixture(t)
		code := f.code(t, oauthDomain.AccessVariantOnline, "acme", f.login(t, "u1"))

		_, err := f.engine.GrantOfflineRefreshToken(ctx, code, acmeRedirectURI)
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidGrant)
	})

	t.Run("Error_NotACode", func(t *testing.T) {
		f := newEngineFixture(t)
		refreshToken := f.refreshToken(t, "acme", "u1")

		_, err := f.engine.GrantOnlineAccessToken(ctx, refreshToken)
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidParameter)
	})

	t.Run("Error_ExpiredCode", func(t *testing.T) {
		f := newEngineFixture(t)
		code := f.code(t, oauthDomain.AccessVariantOnline, "acme", f.login(t, "u1"))
		f.clock.Advance(2 * time.Minute)

		_, err := f.engine.GrantOnlineAccessToken(ctx, code)
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidGrant)
		assert.Equal(t, 0, f.tokenRepo.Len())
	})
}

func TestTokenUseCase_GrantOfflineAccessToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Error_RevokedRefreshToken", func(t *testing.T) {
		f := newEngineFixture(t)
		refreshToken := f.refreshToken(t, "acme", "u1")

		revoked, err := f.engine.RevokeToken(ctx, refreshToken)
		require.NoError(t, err)
		assert.True(t, revoked)

		_, err = f.engine.GrantOfflineAccessToken(ctx, refreshToken)
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidGrant)
	})

	t.Run("Success_OfflineTokenOutlivesRevokedRefreshToken", func(t *testing.T) {
		f := newEngineFixture(t)
		refreshToken := f.refreshToken(t, "acme", "u1")
		accessToken, err := f.engine.GrantOfflineAccessToken(ctx, refreshToken)
		require.NoError(t, err)

		_, err = f.engine.RevokeToken(ctx, refreshToken)
		require.NoError(t, err)

		_, err = f.engine.GetToken(ctx, accessToken.ID)
		assert.NoError(t, err)

		f.clock.Advance(2 * time.Hour)
		_, err = f.engine.GetToken(ctx, accessToken.ID)
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)
	})

	t.Run("Error_NotARefreshToken", func(t *testing.T) {
		f := newEngineFixture(t)
		accessToken := f.onlineAccessToken(t, "acme", "u1")

		_, err := f.engine.GrantOfflineAccessToken(ctx, accessToken)
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidParameter)
	})
}

func TestTokenUseCase_LazyGC(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	accessToken := f.onlineAccessToken(t, "acme", "u1")
	f.clock.Advance(3 * time.Hour)

	// Nothing collects the record until it is read.
	_, err := f.tokenRepo.Get(ctx, accessToken.ID)
	require.NoError(t, err)
	_, err = f.registry.Get(ctx, accessToken.TicketID)
	require.NoError(t, err)

	_, err = f.engine.GetToken(ctx, accessToken.ID)
	assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)

	_, err = f.registry.Get(ctx, accessToken.TicketID)
	assert.ErrorIs(t, err, ticketDomain.ErrTicketNotFound)
	_, err = f.tokenRepo.Get(ctx, accessToken.ID)
	assert.ErrorIs(t, err, oauthDomain.ErrTokenNotFound)

	_, err = f.engine.GetToken(ctx, accessToken.ID)
	assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)
}

func TestTokenUseCase_GetTokenOfType(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	accessToken := f.onlineAccessToken(t, "acme", "u1")

	t.Run("Success", func(t *testing.T) {
		got, err := f.engine.GetTokenOfType(ctx, accessToken.ID, oauthDomain.TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, accessToken.TicketID, got.TicketID)
		assert.False(t, got.ExpiresAt.IsZero())
	})

	t.Run("Error_TypeMismatch", func(t *testing.T) {
		_, err := f.engine.GetTokenOfType(ctx, accessToken.ID, oauthDomain.TokenTypeRefresh)
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)
	})

	t.Run("Error_UnknownPrefix", func(t *testing.T) {
		_, err := f.engine.GetToken(ctx, "XX-unknown")
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)
	})

	t.Run("Error_MissingRecord", func(t *testing.T) {
		_, err := f.engine.GetToken(ctx, "AT-missing")
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)
	})
}

func TestTokenUseCase_Scopes(t *testing.T) {
	f := newEngineFixture(t)

	defaults := f.engine.GetDefaultScope()
	assert.Equal(t, []string{"openid"}, oauthDomain.ScopeNames(defaults))
	assert.Equal(t, defaults, f.engine.GetScopes(nil))

	requested := []string{"profile", "unknown"}
	withDefaults := append([]string{"openid"}, requested...)
	assert.Equal(t, f.engine.GetScopes(requested), f.engine.GetScopes(withDefaults))
	assert.Equal(t, []string{"openid", "profile"}, oauthDomain.ScopeNames(f.engine.GetScopes(requested)))
}

func TestTokenUseCase_RevokeClientTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Completeness", func(t *testing.T) {
		f := newEngineFixture(t)
		rt1 := f.refreshToken(t, "acme", "u1")
		offline, err := f.engine.GrantOfflineAccessToken(ctx, rt1)
		require.NoError(t, err)
		online := f.onlineAccessToken(t, "acme", "u2")
		other := f.onlineAccessToken(t, "globex", "u1")

		revoked, err := f.engine.RevokeClientTokens(ctx, "acme", acmeSecret)
		require.NoError(t, err)
		assert.True(t, revoked)

		for _, token := range []*oauthDomain.Token{rt1, offline, online} {
			_, err := f.engine.GetToken(ctx, token.ID)
			assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)
		}
		_, err = f.engine.GetToken(ctx, other.ID)
		assert.NoError(t, err)
	})

	t.Run("Success_PendingCodes", func(t *testing.T) {
		f := newEngineFixture(t)
		offlineCode := f.code(t, oauthDomain.AccessVariantOffline, "acme", f.login(t, "u1"))
		onlineCode := f.code(t, oauthDomain.AccessVariantOnline, "acme", f.login(t, "u2"))

		revoked, err := f.engine.RevokeClientTokens(ctx, "acme", acmeSecret)
		require.NoError(t, err)
		assert.True(t, revoked)

		_, err = f.engine.GrantOfflineRefreshToken(ctx, offlineCode, acmeRedirectURI)
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidGrant)
		_, err = f.engine.GrantOnlineAccessToken(ctx, onlineCode)
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidGrant)
		_, err = f.engine.GetToken(ctx, offlineCode.ID)
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)
	})

	t.Run("Failure_BadSecret", func(t *testing.T) {
		f := newEngineFixture(t)
		refreshToken := f.refreshToken(t, "acme", "u1")

		revoked, err := f.engine.RevokeClientTokens(ctx, "acme", "wrong")
		require.NoError(t, err)
		assert.False(t, revoked)

		revoked, err = f.engine.RevokeClientTokens(ctx, "unknown", acmeSecret)
		require.NoError(t, err)
		assert.False(t, revoked)

		_, err = f.engine.GetToken(ctx, refreshToken.ID)
		assert.NoError(t, err)
	})
}

func TestTokenUseCase_RevokeClientPrincipalTokens(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	caller := f.onlineAccessToken(t, "acme", "u1")
	refreshToken := f.refreshToken(t, "acme", "u1")
	offline, err := f.engine.GrantOfflineAccessToken(ctx, refreshToken)
	require.NoError(t, err)
	sameClientOtherPrincipal := f.onlineAccessToken(t, "acme", "u2")
	otherClientSamePrincipal := f.onlineAccessToken(t, "globex", "u1")

	revoked, err := f.engine.RevokeClientPrincipalTokens(ctx, caller)
	require.NoError(t, err)
	assert.True(t, revoked)

	for _, token := range []*oauthDomain.Token{caller, refreshToken} {
		_, err := f.engine.GetToken(ctx, token.ID)
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)
	}
	for _, token := range []*oauthDomain.Token{offline, sameClientOtherPrincipal, otherClientSamePrincipal} {
		_, err := f.engine.GetToken(ctx, token.ID)
		assert.NoError(t, err)
	}

	_, err = f.engine.RevokeClientPrincipalTokens(ctx, refreshToken)
	assert.ErrorIs(t, err, oauthDomain.ErrInvalidParameter)
}

func TestTokenUseCase_GrantCASAccessToken(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	tgt := f.login(t, "u1")

	accessToken, err := f.engine.GrantCASAccessToken(ctx, tgt, "https://legacy.example/")
	require.NoError(t, err)
	assert.Equal(t, oauthDomain.AccessVariantCAS, accessToken.Variant)
	assert.Equal(t, tgt.ID, accessToken.TicketID)
	assert.Equal(t, []string{"openid"}, accessToken.Scopes)
	assert.Empty(t, accessToken.ClientID)

	// Logging out ends the bridged token as well.
	_, err = f.tickets.DeleteTicket(ctx, tgt.ID)
	require.NoError(t, err)
	_, err = f.engine.GetToken(ctx, accessToken.ID)
	assert.ErrorIs(t, err, oauthDomain.ErrInvalidToken)

	_, err = f.engine.GrantCASAccessToken(ctx, nil, "https://legacy.example/")
	assert.ErrorIs(t, err, oauthDomain.ErrInvalidParameter)
}

func TestTokenUseCase_GrantPersonalAccessToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ReusesPersonalTokenID", func(t *testing.T) {
		f := newEngineFixture(t)
		personalToken := &oauthDomain.PersonalToken{
			ID:          "AT-personal-1",
			Name:        "ci",
			PrincipalID: "u1",
			Scopes:      []string{"openid", "email"},
		}

		first, err := f.engine.GrantPersonalAccessToken(ctx, personalToken)
		require.NoError(t, err)
		assert.Equal(t, personalToken.ID, first.ID)
		assert.Equal(t, oauthDomain.AccessVariantPersonal, first.Variant)

		second, err := f.engine.GrantPersonalAccessToken(ctx, personalToken)
		require.NoError(t, err)
		assert.Equal(t, first.TicketID, second.TicketID)

		f.clock.Advance(3 * time.Hour)
		third, err := f.engine.GrantPersonalAccessToken(ctx, personalToken)
		require.NoError(t, err)
		assert.Equal(t, personalToken.ID, third.ID)
		assert.NotEqual(t, first.TicketID, third.TicketID)
	})

	t.Run("Error_DisabledPrincipal", func(t *testing.T) {
		f := newEngineFixture(t)

		_, err := f.engine.GrantPersonalAccessToken(ctx, &oauthDomain.PersonalToken{
			ID:          "AT-personal-2",
			PrincipalID: "mallory",
		})
		assert.ErrorIs(t, err, oauthDomain.ErrUnauthorizedGrant)
		assert.Equal(t, 0, f.registry.Len())
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		f := newEngineFixture(t)

		_, err := f.engine.GrantPersonalAccessToken(ctx, &oauthDomain.PersonalToken{
			ID:          "RT-personal",
			PrincipalID: "u1",
		})
		assert.ErrorIs(t, err, oauthDomain.ErrInvalidParameter)
	})
}

func TestTokenUseCase_Metadata(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.refreshToken(t, "acme", "u1")
	f.onlineAccessToken(t, "acme", "u2")
	caller := f.onlineAccessToken(t, "globex", "u1")
	code := f.code(t, oauthDomain.AccessVariantOnline, "acme", f.login(t, "u1"), "email")
	_, err := f.engine.GrantOnlineAccessToken(ctx, code)
	require.NoError(t, err)

	t.Run("ClientMetadata", func(t *testing.T) {
		metadata, err := f.engine.GetClientMetadata(ctx, "acme", acmeSecret)
		require.NoError(t, err)
		assert.Equal(t, "acme app", metadata.Name)
		assert.Equal(t, int64(2), metadata.PrincipalCount)

		_, err = f.engine.GetClientMetadata(ctx, "acme", "wrong")
		assert.ErrorIs(t, err, oauthDomain.ErrUnauthorizedGrant)
	})

	t.Run("PrincipalMetadata", func(t *testing.T) {
		metadata, err := f.engine.GetPrincipalMetadata(ctx, caller)
		require.NoError(t, err)
		require.Len(t, metadata, 2)
		assert.Equal(t, []string{"email", "openid"}, metadata["acme"].Scopes)
		assert.Equal(t, "acme app", metadata["acme"].Name)
		assert.Equal(t, []string{"openid"}, metadata["globex"].Scopes)
	})
}
