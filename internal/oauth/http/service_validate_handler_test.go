package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	"github.com/allisson/casoauth/internal/oauth/http/dto"
	usecaseMocks "github.com/allisson/casoauth/internal/oauth/usecase/mocks"
	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
	ticketMocks "github.com/allisson/casoauth/internal/ticket/usecase/mocks"
)

type serviceValidateFixture struct {
	router  *gin.Engine
	tickets *ticketMocks.MockTicketUseCase
	tokens  *usecaseMocks.MockTokenUseCase
	clients *usecaseMocks.MockClientUseCase
	now     time.Time
}

func newServiceValidateFixture(t *testing.T) *serviceValidateFixture {
	t.Helper()

	f := &serviceValidateFixture{
		tickets: &ticketMocks.MockTicketUseCase{},
		tokens:  &usecaseMocks.MockTokenUseCase{},
		clients: &usecaseMocks.MockClientUseCase{},
		now:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	handler := NewServiceValidateHandler(f.tickets, f.tokens, f.clients, discardLogger())
	handler.now = func() time.Time { return f.now }

	f.router = gin.New()
	f.router.GET("/v1/cas/validate", handler.ServiceValidateHandler)

	t.Cleanup(func() {
		f.tickets.AssertExpectations(t)
		f.tokens.AssertExpectations(t)
		f.clients.AssertExpectations(t)
	})
	return f
}

func TestServiceValidateHandler(t *testing.T) {
	grantor := &ticketDomain.Ticket{
		ID:   "TGT-1",
		Kind: ticketDomain.KindGrantor,
		Authentication: ticketDomain.Authentication{
			PrincipalID: "u1",
			Attributes:  map[string]string{"mail": "u1@example.com"},
		},
	}

	t.Run("plain validation", func(t *testing.T) {
		f := newServiceValidateFixture(t)

		f.tickets.On("ValidateServiceTicket", mock.Anything, "ST-1", "https://app.example/").
			Return(grantor, nil).
			Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/cas/validate?ticket=ST-1&service=https://app.example/", nil)
		w := serve(f.router, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var body dto.ServiceValidateResponse
		decodeBody(t, w, &body)
		assert.Equal(t, "u1", body.PrincipalID)
		assert.Equal(t, "u1@example.com", body.Attributes["mail"])
		assert.Empty(t, body.AccessToken)
	})

	t.Run("client callback gets an access token", func(t *testing.T) {
		f := newServiceValidateFixture(t)
		access := &oauthDomain.Token{
			ID:        "AT-cas",
			Type:      oauthDomain.TokenTypeAccess,
			Variant:   oauthDomain.AccessVariantCAS,
			ExpiresAt: f.now.Add(8 * time.Hour),
		}

		f.tickets.On("ValidateServiceTicket", mock.Anything, "ST-2", "https://acme.example/cb").
			Return(grantor, nil).
			Once()
		f.clients.On("Get", mock.Anything, "acme").
			Return(&oauthDomain.Client{ID: "acme", RedirectURI: "https://acme.example/cb"}, nil).
			Once()
		f.tokens.On("GrantCASAccessToken", mock.Anything, grantor, "https://acme.example/cb").
			Return(access, nil).
			Once()

		req := httptest.NewRequest(http.MethodGet,
			"/v1/cas/validate?ticket=ST-2&service=https://acme.example/cb&client_id=acme", nil)
		w := serve(f.router, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var body dto.ServiceValidateResponse
		decodeBody(t, w, &body)
		assert.Equal(t, "AT-cas", body.AccessToken)
		assert.Equal(t, int64(28800), body.ExpiresIn)
		assert.Equal(t, "bearer", body.TokenType)
	})

	t.Run("service is not the client callback", func(t *testing.T) {
		f := newServiceValidateFixture(t)

		f.tickets.On("ValidateServiceTicket", mock.Anything, "ST-3", "https://other.example/").
			Return(grantor, nil).
			Once()
		f.clients.On("Get", mock.Anything, "acme").
			Return(&oauthDomain.Client{ID: "acme", RedirectURI: "https://acme.example/cb"}, nil).
			Once()

		req := httptest.NewRequest(http.MethodGet,
			"/v1/cas/validate?ticket=ST-3&service=https://other.example/&client_id=acme", nil)
		w := serve(f.router, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("service mismatch", func(t *testing.T) {
		f := newServiceValidateFixture(t)

		f.tickets.On("ValidateServiceTicket", mock.Anything, "ST-4", "https://app.example/").
			Return(nil, ticketDomain.ErrServiceMismatch).
			Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/cas/validate?ticket=ST-4&service=https://app.example/", nil)
		w := serve(f.router, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		f := newServiceValidateFixture(t)

		f.tickets.On("ValidateServiceTicket", mock.Anything, "ST-5", "https://app.example/").
			Return(nil, ticketDomain.ErrTicketNotFound).
			Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/cas/validate?ticket=ST-5&service=https://app.example/", nil)
		w := serve(f.router, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("grantor ticket id is rejected", func(t *testing.T) {
		f := newServiceValidateFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/v1/cas/validate?ticket=TGT-1&service=https://app.example/", nil)
		w := serve(f.router, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
