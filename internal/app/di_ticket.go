package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	ticketHTTP "github.com/allisson/casoauth/internal/ticket/http"
	ticketRepository "github.com/allisson/casoauth/internal/ticket/repository"
	ticketService "github.com/allisson/casoauth/internal/ticket/service"
	ticketUseCase "github.com/allisson/casoauth/internal/ticket/usecase"
)

const redisConnectTimeout = 5 * time.Second

type ticketComponents struct {
	ticketRegistry      ticketUseCase.TicketRegistry
	redisTicketRegistry *ticketRepository.RedisTicketRegistry
	idGenerator         ticketService.IDGenerator
	ticketUseCase       ticketUseCase.TicketUseCase
	loginHandler        *ticketHTTP.LoginHandler

	ticketRegistryInit sync.Once
	idGeneratorInit    sync.Once
	ticketUseCaseInit  sync.Once
	loginHandlerInit   sync.Once
}

// IDGenerator returns the ticket id generator shared by tickets and tokens.
func (c *Container) IDGenerator() ticketService.IDGenerator {
	c.idGeneratorInit.Do(func() {
		c.idGenerator = ticketService.NewIDGenerator()
	})
	return c.idGenerator
}

// TicketRegistry returns the ticket registry selected by TICKET_REGISTRY.
func (c *Container) TicketRegistry() (ticketUseCase.TicketRegistry, error) {
	var err error
	c.ticketRegistryInit.Do(func() {
		c.ticketRegistry, err = c.initTicketRegistry()
		if err != nil {
			c.initErrors["ticketRegistry"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["ticketRegistry"]; exists {
		return nil, storedErr
	}
	return c.ticketRegistry, nil
}

// TicketUseCase returns the ticket use case.
func (c *Container) TicketUseCase() (ticketUseCase.TicketUseCase, error) {
	var err error
	c.ticketUseCaseInit.Do(func() {
		c.ticketUseCase, err = c.initTicketUseCase()
		if err != nil {
			c.initErrors["ticketUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["ticketUseCase"]; exists {
		return nil, storedErr
	}
	return c.ticketUseCase, nil
}

// LoginHandler returns the login HTTP handler.
func (c *Container) LoginHandler() (*ticketHTTP.LoginHandler, error) {
	var err error
	c.loginHandlerInit.Do(func() {
		c.loginHandler, err = c.initLoginHandler()
		if err != nil {
			c.initErrors["loginHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["loginHandler"]; exists {
		return nil, storedErr
	}
	return c.loginHandler, nil
}

func (c *Container) initTicketRegistry() (ticketUseCase.TicketRegistry, error) {
	switch c.config.TicketRegistry {
	case "memory":
		return ticketRepository.NewMemoryTicketRegistry(c.config.TicketRetentionGrace), nil
	case "redis":
		ctx, cancel := context.WithTimeout(c.ctx, redisConnectTimeout)
		defer cancel()

		registry, err := ticketRepository.NewRedisTicketRegistry(ctx, ticketRepository.RedisConfig{
			Addr:           c.config.RedisAddr,
			Password:       c.config.RedisPassword,
			DB:             c.config.RedisDB,
			KeyPrefix:      c.config.RedisKeyPrefix,
			RetentionGrace: c.config.TicketRetentionGrace,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis ticket registry: %w", err)
		}
		c.redisTicketRegistry = registry
		return registry, nil
	default:
		return nil, fmt.Errorf("unsupported ticket registry: %s", c.config.TicketRegistry)
	}
}

// initTicketUseCase creates the ticket use case with all its dependencies.
func (c *Container) initTicketUseCase() (ticketUseCase.TicketUseCase, error) {
	registry, err := c.TicketRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket registry for ticket use case: %w", err)
	}

	baseUseCase := ticketUseCase.NewTicketUseCase(
		ticketUseCase.Config{
			GrantorTTL: c.config.TicketGrantorTTL,
			ServiceTTL: c.config.TicketServiceTTL,
		},
		registry,
		c.IDGenerator(),
		ticketService.NewAuthenticationPolicy(c.config.TicketDisabledPrincipals),
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for ticket use case: %w", err)
		}
		return ticketUseCase.NewTicketUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initLoginHandler() (*ticketHTTP.LoginHandler, error) {
	tickets, err := c.TicketUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket use case for login handler: %w", err)
	}
	return ticketHTTP.NewLoginHandler(tickets, c.config.TicketCookieSecure, c.Logger()), nil
}
