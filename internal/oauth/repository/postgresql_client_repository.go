package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/casoauth/internal/database"
	apperrors "github.com/allisson/casoauth/internal/errors"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
)

// PostgreSQLClientRepository implements Client persistence for PostgreSQL.
type PostgreSQLClientRepository struct {
	db *sql.DB
}

// Create inserts a new Client into the PostgreSQL database.
func (p *PostgreSQLClientRepository) Create(ctx context.Context, client *oauthDomain.Client) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO oauth_clients (id, secret, name, description, redirect_uri, auto_approve, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		client.ID,
		client.Secret,
		client.Name,
		client.Description,
		client.RedirectURI,
		client.AutoApprove,
		client.CreatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return oauthDomain.ErrClientAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create client")
	}
	return nil
}

// Get retrieves a Client by id from the PostgreSQL database.
func (p *PostgreSQLClientRepository) Get(ctx context.Context, clientID string) (*oauthDomain.Client, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, secret, name, description, redirect_uri, auto_approve, created_at
			  FROM oauth_clients WHERE id = $1`

	var client oauthDomain.Client

	err := querier.QueryRowContext(ctx, query, clientID).Scan(
		&client.ID,
		&client.Secret,
		&client.Name,
		&client.Description,
		&client.RedirectURI,
		&client.AutoApprove,
		&client.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauthDomain.ErrClientNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get client")
	}

	return &client, nil
}

// NewPostgreSQLClientRepository creates a new PostgreSQL Client repository.
func NewPostgreSQLClientRepository(db *sql.DB) *PostgreSQLClientRepository {
	return &PostgreSQLClientRepository{db: db}
}
