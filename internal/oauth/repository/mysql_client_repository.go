package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/casoauth/internal/database"
	apperrors "github.com/allisson/casoauth/internal/errors"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
)

// MySQLClientRepository implements Client persistence for MySQL.
type MySQLClientRepository struct {
	db *sql.DB
}

// Create inserts a new Client into the MySQL database.
func (p *MySQLClientRepository) Create(ctx context.Context, client *oauthDomain.Client) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO oauth_clients (id, secret, name, description, redirect_uri, auto_approve, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

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
		if isMySQLUniqueViolation(err) {
			return oauthDomain.ErrClientAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create client")
	}
	return nil
}

// Get retrieves a Client by id from the MySQL database.
func (p *MySQLClientRepository) Get(ctx context.Context, clientID string) (*oauthDomain.Client, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, secret, name, description, redirect_uri, auto_approve, created_at
			  FROM oauth_clients WHERE id = ?`

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

// NewMySQLClientRepository creates a new MySQL Client repository.
func NewMySQLClientRepository(db *sql.DB) *MySQLClientRepository {
	return &MySQLClientRepository{db: db}
}
