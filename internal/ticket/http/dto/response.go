package dto

import (
	"time"

	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
)

// LoginResponse carries the ids of the tickets opened by a login.
type LoginResponse struct {
	GrantorTicket string    `json:"grantor_ticket"`
	ServiceTicket string    `json:"service_ticket,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// MapLoginResponse converts the grantor and optional service ticket.
func MapLoginResponse(grantor, service *ticketDomain.Ticket) LoginResponse {
	response := LoginResponse{
		GrantorTicket: grantor.ID,
		ExpiresAt:     grantor.ExpiresAt,
	}
	if service != nil {
		response.ServiceTicket = service.ID
	}
	return response
}

// ServiceTicketResponse carries a freshly minted service ticket.
type ServiceTicketResponse struct {
	ServiceTicket string    `json:"service_ticket"`
	ExpiresAt     time.Time `json:"expires_at"`
}
