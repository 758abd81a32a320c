package usecase

import (
	"context"
	"time"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/casoauth/internal/errors"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	oauthService "github.com/allisson/casoauth/internal/oauth/service"
	ticketService "github.com/allisson/casoauth/internal/ticket/service"
	customValidation "github.com/allisson/casoauth/internal/validation"
)

type personalTokenUseCase struct {
	personalTokenRepo PersonalTokenRepository
	scopeCatalog      oauthService.ScopeCatalog
	idGenerator       ticketService.IDGenerator
}

// Create provisions a personal token. Its id carries the access token prefix because the
// access token granted from it reuses the same id.
func (p *personalTokenUseCase) Create(
	ctx context.Context,
	input *oauthDomain.CreatePersonalTokenInput,
) (*oauthDomain.PersonalToken, error) {
	if input == nil {
		return nil, oauthDomain.ErrInvalidParameter
	}
	err := validation.ValidateStruct(input,
		validation.Field(&input.Name, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&input.PrincipalID, validation.Required, customValidation.NotBlank),
	)
	if err != nil {
		return nil, apperrors.Wrap(oauthDomain.ErrInvalidParameter, err.Error())
	}

	id, err := p.idGenerator.GenerateID(oauthDomain.AccessTokenPrefix)
	if err != nil {
		return nil, err
	}

	scopes := make(map[string]oauthDomain.Scope, len(input.Scopes))
	for _, name := range input.Scopes {
		if scope, ok := p.scopeCatalog.Get(name); ok {
			scopes[scope.Name] = scope
		}
	}

	personalToken := &oauthDomain.PersonalToken{
		ID:          id,
		IDHash:      oauthDomain.HashTokenID(id),
		Name:        input.Name,
		PrincipalID: input.PrincipalID,
		Scopes:      oauthDomain.ScopeNames(scopes),
		CreatedAt:   time.Now().UTC(),
	}
	if err := p.personalTokenRepo.Create(ctx, personalToken); err != nil {
		return nil, err
	}

	return personalToken, nil
}

func (p *personalTokenUseCase) Get(ctx context.Context, personalTokenID string) (*oauthDomain.PersonalToken, error) {
	return p.personalTokenRepo.Get(ctx, personalTokenID)
}

// NewPersonalTokenUseCase creates a new PersonalTokenUseCase.
func NewPersonalTokenUseCase(
	personalTokenRepo PersonalTokenRepository,
	scopeCatalog oauthService.ScopeCatalog,
	idGenerator ticketService.IDGenerator,
) PersonalTokenUseCase {
	return &personalTokenUseCase{
		personalTokenRepo: personalTokenRepo,
		scopeCatalog:      scopeCatalog,
		idGenerator:       idGenerator,
	}
}
