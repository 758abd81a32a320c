package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/allisson/casoauth/internal/errors"
	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
)

// minKeyTTL keeps keys of tickets that are already past their retention window
// around long enough to be read once.
const minKeyTTL = time.Second

// RedisConfig holds connection settings for the Redis ticket registry.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	KeyPrefix      string
	RetentionGrace time.Duration
}

// RedisTicketRegistry stores tickets as JSON values with a key expiry of the ticket
// lifetime plus the retention grace period.
type RedisTicketRegistry struct {
	client    redis.UniversalClient
	keyPrefix string
	grace     time.Duration
}

// NewRedisTicketRegistry connects to Redis and verifies the connection.
func NewRedisTicketRegistry(ctx context.Context, cfg RedisConfig) (*RedisTicketRegistry, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisTicketRegistryWithClient(client, cfg.KeyPrefix, cfg.RetentionGrace), nil
}

// NewRedisTicketRegistryWithClient creates a registry with a pre-configured client.
func NewRedisTicketRegistryWithClient(
	client redis.UniversalClient,
	keyPrefix string,
	retentionGrace time.Duration,
) *RedisTicketRegistry {
	return &RedisTicketRegistry{
		client:    client,
		keyPrefix: keyPrefix,
		grace:     retentionGrace,
	}
}

// Add stores the ticket.
func (r *RedisTicketRegistry) Add(ctx context.Context, ticket *ticketDomain.Ticket) error {
	payload, err := json.Marshal(ticket)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal ticket")
	}

	ttl := time.Until(ticket.ExpiresAt) + r.grace
	if ttl < minKeyTTL {
		ttl = minKeyTTL
	}

	if err := r.client.Set(ctx, r.key(ticket.ID), payload, ttl).Err(); err != nil {
		return apperrors.Wrap(err, "failed to store ticket")
	}
	return nil
}

// Get loads the ticket or returns ErrTicketNotFound.
func (r *RedisTicketRegistry) Get(ctx context.Context, ticketID string) (*ticketDomain.Ticket, error) {
	payload, err := r.client.Get(ctx, r.key(ticketID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ticketDomain.ErrTicketNotFound
		}
		return nil, apperrors.Wrap(err, "failed to load ticket")
	}

	var ticket ticketDomain.Ticket
	if err := json.Unmarshal(payload, &ticket); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode ticket")
	}
	return &ticket, nil
}

// Delete removes the ticket. DEL is atomic so only one concurrent caller sees a count of 1.
func (r *RedisTicketRegistry) Delete(ctx context.Context, ticketID string) (bool, error) {
	count, err := r.client.Del(ctx, r.key(ticketID)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to delete ticket")
	}
	return count > 0, nil
}

// Ping checks Redis connectivity.
func (r *RedisTicketRegistry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (r *RedisTicketRegistry) Close() error {
	return r.client.Close()
}

func (r *RedisTicketRegistry) key(ticketID string) string {
	return r.keyPrefix + "ticket:" + ticketID
}
