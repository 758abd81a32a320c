package app

import (
	"fmt"
	"sync"

	oauthHTTP "github.com/allisson/casoauth/internal/oauth/http"
	oauthRepository "github.com/allisson/casoauth/internal/oauth/repository"
	oauthService "github.com/allisson/casoauth/internal/oauth/service"
	oauthUseCase "github.com/allisson/casoauth/internal/oauth/usecase"
)

type oauthComponents struct {
	scopeCatalog         oauthService.ScopeCatalog
	secretService        oauthService.SecretService
	tokenRepository      oauthUseCase.TokenRepository
	clientRepository     oauthUseCase.ClientRepository
	personalTokenRepo    oauthUseCase.PersonalTokenRepository
	tokenUseCase         oauthUseCase.TokenUseCase
	clientUseCase        oauthUseCase.ClientUseCase
	personalTokenUseCase oauthUseCase.PersonalTokenUseCase
	oauthRoutes          *oauthHTTP.Routes

	scopeCatalogInit         sync.Once
	secretServiceInit        sync.Once
	tokenRepositoryInit      sync.Once
	clientRepositoryInit     sync.Once
	personalTokenRepoInit    sync.Once
	tokenUseCaseInit         sync.Once
	clientUseCaseInit        sync.Once
	personalTokenUseCaseInit sync.Once
	oauthRoutesInit          sync.Once
}

// ScopeCatalog returns the scope catalog built from OAUTH_SCOPES and OAUTH_DEFAULT_SCOPES.
func (c *Container) ScopeCatalog() (oauthService.ScopeCatalog, error) {
	var err error
	c.scopeCatalogInit.Do(func() {
		c.scopeCatalog, err = c.initScopeCatalog()
		if err != nil {
			c.initErrors["scopeCatalog"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["scopeCatalog"]; exists {
		return nil, storedErr
	}
	return c.scopeCatalog, nil
}

// SecretService returns the client secret hasher.
func (c *Container) SecretService() (oauthService.SecretService, error) {
	var err error
	c.secretServiceInit.Do(func() {
		c.secretService, err = oauthService.NewSecretService()
		if err != nil {
			c.initErrors["secretService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretService"]; exists {
		return nil, storedErr
	}
	return c.secretService, nil
}

// TokenRepository returns the token repository based on database driver.
func (c *Container) TokenRepository() (oauthUseCase.TokenRepository, error) {
	var err error
	c.tokenRepositoryInit.Do(func() {
		c.tokenRepository, err = c.initTokenRepository()
		if err != nil {
			c.initErrors["tokenRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenRepository"]; exists {
		return nil, storedErr
	}
	return c.tokenRepository, nil
}

// ClientRepository returns the client repository based on database driver.
func (c *Container) ClientRepository() (oauthUseCase.ClientRepository, error) {
	var err error
	c.clientRepositoryInit.Do(func() {
		c.clientRepository, err = c.initClientRepository()
		if err != nil {
			c.initErrors["clientRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientRepository"]; exists {
		return nil, storedErr
	}
	return c.clientRepository, nil
}

// PersonalTokenRepository returns the personal token repository based on database driver.
func (c *Container) PersonalTokenRepository() (oauthUseCase.PersonalTokenRepository, error) {
	var err error
	c.personalTokenRepoInit.Do(func() {
		c.personalTokenRepo, err = c.initPersonalTokenRepository()
		if err != nil {
			c.initErrors["personalTokenRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["personalTokenRepository"]; exists {
		return nil, storedErr
	}
	return c.personalTokenRepo, nil
}

// TokenUseCase returns the OAuth token engine.
func (c *Container) TokenUseCase() (oauthUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// ClientUseCase returns the client use case.
func (c *Container) ClientUseCase() (oauthUseCase.ClientUseCase, error) {
	var err error
	c.clientUseCaseInit.Do(func() {
		c.clientUseCase, err = c.initClientUseCase()
		if err != nil {
			c.initErrors["clientUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientUseCase"]; exists {
		return nil, storedErr
	}
	return c.clientUseCase, nil
}

// PersonalTokenUseCase returns the personal token use case.
func (c *Container) PersonalTokenUseCase() (oauthUseCase.PersonalTokenUseCase, error) {
	var err error
	c.personalTokenUseCaseInit.Do(func() {
		c.personalTokenUseCase, err = c.initPersonalTokenUseCase()
		if err != nil {
			c.initErrors["personalTokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["personalTokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.personalTokenUseCase, nil
}

// OAuthRoutes returns the OAuth endpoints ready to be mounted.
func (c *Container) OAuthRoutes() (*oauthHTTP.Routes, error) {
	var err error
	c.oauthRoutesInit.Do(func() {
		c.oauthRoutes, err = c.initOAuthRoutes()
		if err != nil {
			c.initErrors["oauthRoutes"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["oauthRoutes"]; exists {
		return nil, storedErr
	}
	return c.oauthRoutes, nil
}

func (c *Container) initScopeCatalog() (oauthService.ScopeCatalog, error) {
	scopes, err := oauthService.ParseScopes(c.config.OAuthScopes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse oauth scopes: %w", err)
	}

	catalog, err := oauthService.NewScopeCatalog(scopes, c.config.OAuthDefaultScopes)
	if err != nil {
		return nil, fmt.Errorf("failed to create scope catalog: %w", err)
	}
	return catalog, nil
}

// initTokenRepository creates the token repository based on the database driver.
func (c *Container) initTokenRepository() (oauthUseCase.TokenRepository, error) {
	if c.config.DBDriver == driverMemory {
		return oauthRepository.NewMemoryTokenRepository(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return oauthRepository.NewPostgreSQLTokenRepository(db), nil
	case "mysql":
		return oauthRepository.NewMySQLTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initClientRepository creates the client repository based on the database driver.
func (c *Container) initClientRepository() (oauthUseCase.ClientRepository, error) {
	if c.config.DBDriver == driverMemory {
		return oauthRepository.NewMemoryClientRepository(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for client repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return oauthRepository.NewPostgreSQLClientRepository(db), nil
	case "mysql":
		return oauthRepository.NewMySQLClientRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initPersonalTokenRepository() (oauthUseCase.PersonalTokenRepository, error) {
	if c.config.DBDriver == driverMemory {
		return oauthRepository.NewMemoryPersonalTokenRepository(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for personal token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return oauthRepository.NewPostgreSQLPersonalTokenRepository(db), nil
	case "mysql":
		return oauthRepository.NewMySQLPersonalTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTokenUseCase creates the token use case with all its dependencies.
func (c *Container) initTokenUseCase() (oauthUseCase.TokenUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for token use case: %w", err)
	}

	tickets, err := c.TicketUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket use case for token use case: %w", err)
	}

	tokenRepository, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for token use case: %w", err)
	}

	clientRepository, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for token use case: %w", err)
	}

	scopeCatalog, err := c.ScopeCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get scope catalog for token use case: %w", err)
	}

	secretService, err := c.SecretService()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret service for token use case: %w", err)
	}

	auditLogs, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for token use case: %w", err)
	}

	baseUseCase := oauthUseCase.NewTokenUseCase(
		c.config,
		txManager,
		tickets,
		tokenRepository,
		clientRepository,
		scopeCatalog,
		secretService,
		auditLogs,
		c.IDGenerator(),
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return oauthUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initClientUseCase() (oauthUseCase.ClientUseCase, error) {
	clientRepository, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for client use case: %w", err)
	}

	secretService, err := c.SecretService()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret service for client use case: %w", err)
	}

	return oauthUseCase.NewClientUseCase(clientRepository, secretService), nil
}

func (c *Container) initPersonalTokenUseCase() (oauthUseCase.PersonalTokenUseCase, error) {
	personalTokenRepository, err := c.PersonalTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get personal token repository for personal token use case: %w", err)
	}

	scopeCatalog, err := c.ScopeCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get scope catalog for personal token use case: %w", err)
	}

	return oauthUseCase.NewPersonalTokenUseCase(personalTokenRepository, scopeCatalog, c.IDGenerator()), nil
}

// initOAuthRoutes assembles the OAuth handlers and their middleware.
func (c *Container) initOAuthRoutes() (*oauthHTTP.Routes, error) {
	logger := c.Logger()

	tickets, err := c.TicketUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket use case for oauth routes: %w", err)
	}

	tokens, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for oauth routes: %w", err)
	}

	clients, err := c.ClientUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get client use case for oauth routes: %w", err)
	}

	personalTokens, err := c.PersonalTokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get personal token use case for oauth routes: %w", err)
	}

	routes := &oauthHTTP.Routes{
		Authorize:       oauthHTTP.NewAuthorizeHandler(tokens, clients, logger),
		Token:           oauthHTTP.NewTokenHandler(tokens, clients, personalTokens, logger),
		Revoke:          oauthHTTP.NewRevokeHandler(tokens, logger),
		Metadata:        oauthHTTP.NewMetadataHandler(tokens, logger),
		ServiceValidate: oauthHTTP.NewServiceValidateHandler(tickets, tokens, clients, logger),
		Bearer:          oauthHTTP.BearerTokenMiddleware(tokens, logger),
	}

	if c.config.RateLimitTokenEnabled {
		routes.TokenRateLimit = oauthHTTP.TokenRateLimitMiddleware(
			c.ctx,
			c.config.RateLimitTokenRequestsPerSec,
			c.config.RateLimitTokenBurst,
			logger,
		)
	}

	return routes, nil
}
