package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/casoauth/internal/errors"
	"github.com/allisson/casoauth/internal/httputil"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	"github.com/allisson/casoauth/internal/oauth/http/dto"
	oauthUseCase "github.com/allisson/casoauth/internal/oauth/usecase"
	ticketUseCase "github.com/allisson/casoauth/internal/ticket/usecase"
	customValidation "github.com/allisson/casoauth/internal/validation"
)

// ServiceValidateHandler serves native service ticket validation and bridges it to
// OAuth for services registered as client callbacks.
type ServiceValidateHandler struct {
	ticketUseCase ticketUseCase.TicketUseCase
	tokenUseCase  oauthUseCase.TokenUseCase
	clientUseCase oauthUseCase.ClientUseCase
	now           func() time.Time
	logger        *slog.Logger
}

// NewServiceValidateHandler creates a new service validate handler.
func NewServiceValidateHandler(
	tickets ticketUseCase.TicketUseCase,
	tokenUseCase oauthUseCase.TokenUseCase,
	clientUseCase oauthUseCase.ClientUseCase,
	logger *slog.Logger,
) *ServiceValidateHandler {
	return &ServiceValidateHandler{
		ticketUseCase: tickets,
		tokenUseCase:  tokenUseCase,
		clientUseCase: clientUseCase,
		now:           time.Now,
		logger:        logger,
	}
}

// ServiceValidateHandler consumes a service ticket and returns the authenticated principal.
// GET /v1/cas/validate
//
// With client_id set, the service must be that client's redirect URI and the response
// also carries an access token wrapping the user's grantor ticket. The service ticket
// is consumed whatever the outcome.
func (h *ServiceValidateHandler) ServiceValidateHandler(c *gin.Context) {
	var req dto.ServiceValidateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ctx := c.Request.Context()

	grantor, err := h.ticketUseCase.ValidateServiceTicket(ctx, req.Ticket, req.Service)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var accessToken *oauthDomain.Token
	if req.ClientID != "" {
		client, err := h.clientUseCase.Get(ctx, req.ClientID)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		if client.RedirectURI != req.Service {
			httputil.HandleErrorGin(c,
				apperrors.Wrap(oauthDomain.ErrInvalidParameter, "service is not the client's redirect_uri"),
				h.logger)
			return
		}

		accessToken, err = h.tokenUseCase.GrantCASAccessToken(ctx, grantor, req.Service)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
	}

	c.JSON(http.StatusOK, dto.MapServiceValidateResponse(grantor, accessToken, h.now()))
}
