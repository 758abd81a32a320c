// Package dto provides data transfer objects for the login endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/casoauth/internal/validation"
)

// LoginRequest opens an SSO session for a principal already verified by the caller.
// Service optionally asks for a service ticket in the same round trip.
type LoginRequest struct {
	Principal  string            `json:"principal"  form:"principal"`
	Service    string            `json:"service"    form:"service"`
	Attributes map[string]string `json:"attributes"`
}

// Validate checks the login request.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Principal,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 255),
		),
		validation.Field(&r.Service, customValidation.AbsoluteURL),
	)
}

// ServiceTicketRequest asks for a service ticket from the current session.
type ServiceTicketRequest struct {
	Service string `json:"service" form:"service"`
}

// Validate checks the service ticket request.
func (r *ServiceTicketRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Service, validation.Required, customValidation.AbsoluteURL),
	)
}
