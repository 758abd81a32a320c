// Package http provides the login and logout endpoints that open and close SSO sessions.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/casoauth/internal/httputil"
	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
	"github.com/allisson/casoauth/internal/ticket/http/dto"
	ticketUseCase "github.com/allisson/casoauth/internal/ticket/usecase"
	customValidation "github.com/allisson/casoauth/internal/validation"
)

// GrantorTicketCookie is the cookie holding the grantor ticket id.
const GrantorTicketCookie = "TGC"

const loginMethod = "login"

// LoginHandler opens and closes SSO sessions.
//
// Credentials are not checked here: the caller is trusted to have verified the
// principal, and the authentication policy still decides whether it may log in.
type LoginHandler struct {
	ticketUseCase ticketUseCase.TicketUseCase
	secureCookie  bool
	now           func() time.Time
	logger        *slog.Logger
}

// NewLoginHandler creates a new login handler.
func NewLoginHandler(tickets ticketUseCase.TicketUseCase, secureCookie bool, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		ticketUseCase: tickets,
		secureCookie:  secureCookie,
		now:           time.Now,
		logger:        logger,
	}
}

// LoginHandler creates a grantor ticket and sets the TGC cookie.
// POST /v1/login
func (h *LoginHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ctx := c.Request.Context()

	grantor, err := h.ticketUseCase.CreateGrantorTicket(ctx, ticketDomain.Authentication{
		PrincipalID: req.Principal,
		Attributes:  req.Attributes,
		Method:      loginMethod,
	}, 0)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var service *ticketDomain.Ticket
	if req.Service != "" {
		service, err = h.ticketUseCase.GrantServiceTicket(ctx, grantor.ID, req.Service, 0)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
	}

	h.setCookie(c, grantor.ID, int(grantor.ExpiresIn(h.now())/time.Second))
	c.JSON(http.StatusCreated, dto.MapLoginResponse(grantor, service))
}

// ServiceTicketHandler mints a service ticket from the session in the TGC cookie.
// POST /v1/login/service
func (h *LoginHandler) ServiceTicketHandler(c *gin.Context) {
	grantorID, err := c.Cookie(GrantorTicketCookie)
	if err != nil || grantorID == "" {
		httputil.HandleErrorGin(c, ticketDomain.ErrTicketNotFound, h.logger)
		return
	}

	var req dto.ServiceTicketRequest
	if err := c.ShouldBind(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	service, err := h.ticketUseCase.GrantServiceTicket(c.Request.Context(), grantorID, req.Service, 0)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ServiceTicketResponse{
		ServiceTicket: service.ID,
		ExpiresAt:     service.ExpiresAt,
	})
}

// LogoutHandler deletes the session in the TGC cookie and clears it.
// POST /v1/logout
//
// Tokens anchored to the session stop validating on their next lookup.
func (h *LoginHandler) LogoutHandler(c *gin.Context) {
	if grantorID, err := c.Cookie(GrantorTicketCookie); err == nil && grantorID != "" {
		if _, err := h.ticketUseCase.DeleteTicket(c.Request.Context(), grantorID); err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
	}

	h.setCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// RegisterRoutes mounts the login endpoints under group.
func (h *LoginHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/login", h.LoginHandler)
	group.POST("/login/service", h.ServiceTicketHandler)
	group.POST("/logout", h.LogoutHandler)
}

func (h *LoginHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(GrantorTicketCookie, value, maxAge, "/", "", h.secureCookie, true)
}
