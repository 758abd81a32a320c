package service

import (
	"context"
	"strings"

	apperrors "github.com/allisson/casoauth/internal/errors"
	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
)

type principalPolicy struct {
	disabled map[string]struct{}
}

// Authorize rejects blank principals and principals on the disabled list.
func (p *principalPolicy) Authorize(ctx context.Context, authn ticketDomain.Authentication) error {
	principal := strings.TrimSpace(authn.PrincipalID)
	if principal == "" {
		return apperrors.Wrap(ticketDomain.ErrAuthenticationRejected, "principal is blank")
	}
	if _, ok := p.disabled[principal]; ok {
		return apperrors.Wrap(ticketDomain.ErrAuthenticationRejected, "principal is disabled")
	}
	return nil
}

// NewAuthenticationPolicy creates a policy that rejects the given principals.
func NewAuthenticationPolicy(disabledPrincipals []string) AuthenticationPolicy {
	disabled := make(map[string]struct{}, len(disabledPrincipals))
	for _, principal := range disabledPrincipals {
		disabled[principal] = struct{}{}
	}
	return &principalPolicy{disabled: disabled}
}
