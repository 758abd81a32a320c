package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/casoauth/internal/errors"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	oauthService "github.com/allisson/casoauth/internal/oauth/service"
	customValidation "github.com/allisson/casoauth/internal/validation"
)

// clientUseCase implements ClientUseCase for the client directory.
type clientUseCase struct {
	clientRepo    ClientRepository
	secretService oauthService.SecretService
}

// Create registers a client with a random secret. The plain secret is only returned once;
// the hash is what gets stored.
func (c *clientUseCase) Create(
	ctx context.Context,
	input *oauthDomain.CreateClientInput,
) (*oauthDomain.CreateClientOutput, error) {
	if input == nil {
		return nil, oauthDomain.ErrInvalidParameter
	}
	err := validation.ValidateStruct(input,
		validation.Field(&input.ID, customValidation.NoWhitespace, validation.Length(0, 255)),
		validation.Field(&input.Name, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&input.RedirectURI, validation.Required, customValidation.AbsoluteURL),
	)
	if err != nil {
		return nil, apperrors.Wrap(oauthDomain.ErrInvalidParameter, err.Error())
	}

	plainSecret, hashedSecret, err := c.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	clientID := input.ID
	if clientID == "" {
		clientID = uuid.Must(uuid.NewV7()).String()
	}

	client := &oauthDomain.Client{
		ID:          clientID,
		Secret:      hashedSecret,
		Name:        input.Name,
		Description: input.Description,
		RedirectURI: input.RedirectURI,
		AutoApprove: input.AutoApprove,
		CreatedAt:   time.Now().UTC(),
	}
	if err := c.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return &oauthDomain.CreateClientOutput{
		ID:          client.ID,
		PlainSecret: plainSecret,
	}, nil
}

// Get retrieves a client by ID.
// Returns ErrClientNotFound if the client doesn't exist.
func (c *clientUseCase) Get(ctx context.Context, clientID string) (*oauthDomain.Client, error) {
	return c.clientRepo.Get(ctx, clientID)
}

func (c *clientUseCase) Authenticate(
	ctx context.Context,
	clientID, clientSecret string,
) (*oauthDomain.Client, error) {
	client, err := c.clientRepo.Get(ctx, clientID)
	if err != nil {
		if apperrors.Is(err, oauthDomain.ErrClientNotFound) {
			return nil, apperrors.Wrap(oauthDomain.ErrUnauthorizedGrant, "unknown client")
		}
		return nil, err
	}
	if !c.secretService.CompareSecret(clientSecret, client.Secret) {
		return nil, apperrors.Wrap(oauthDomain.ErrUnauthorizedGrant, "invalid client secret")
	}
	return client, nil
}

// NewClientUseCase creates a new ClientUseCase with the provided dependencies.
func NewClientUseCase(clientRepo ClientRepository, secretService oauthService.SecretService) ClientUseCase {
	return &clientUseCase{
		clientRepo:    clientRepo,
		secretService: secretService,
	}
}
