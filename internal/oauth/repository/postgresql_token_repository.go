package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/casoauth/internal/database"
	apperrors "github.com/allisson/casoauth/internal/errors"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
)

// PostgreSQLTokenRepository implements Token persistence for PostgreSQL.
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// Create inserts a new Token into the PostgreSQL database.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *oauthDomain.Token) error {
	querier := database.GetTx(ctx, p.db)

	scopesJSON, err := marshalScopes(token.Scopes)
	if err != nil {
		return err
	}

	query := `INSERT INTO oauth_tokens (` + tokenColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		oauthDomain.HashTokenID(token.ID),
		token.Type,
		token.Variant,
		token.ClientID,
		token.PrincipalID,
		scopesJSON,
		token.TicketID,
		token.Service,
		token.CreatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return oauthDomain.ErrTokenAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create token")
	}
	return nil
}

// Get retrieves a Token by the digest of its id.
func (p *PostgreSQLTokenRepository) Get(ctx context.Context, tokenID string) (*oauthDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM oauth_tokens WHERE id_hash = $1`

	row := querier.QueryRowContext(ctx, query, oauthDomain.HashTokenID(tokenID))
	token, err := scanTokenByID(row, tokenID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauthDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token")
	}

	return token, nil
}

// DeleteByTicketID removes every Token anchored to the ticket.
func (p *PostgreSQLTokenRepository) DeleteByTicketID(ctx context.Context, ticketID string) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM oauth_tokens WHERE ticket_id = $1`, ticketID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete tokens by ticket")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return count, nil
}

// ListByClient returns every Token issued to the client ordered by creation time.
func (p *PostgreSQLTokenRepository) ListByClient(
	ctx context.Context,
	clientID string,
) ([]*oauthDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM oauth_tokens
			  WHERE client_id = $1 ORDER BY created_at, id_hash`

	rows, err := querier.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tokens by client")
	}
	return scanTokens(rows)
}

// ListByClientPrincipal returns every Token issued to the client for the principal.
func (p *PostgreSQLTokenRepository) ListByClientPrincipal(
	ctx context.Context,
	clientID, principalID string,
) ([]*oauthDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM oauth_tokens
			  WHERE client_id = $1 AND principal_id = $2 ORDER BY created_at, id_hash`

	rows, err := querier.QueryContext(ctx, query, clientID, principalID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tokens by client and principal")
	}
	return scanTokens(rows)
}

// ListByPrincipal returns every Token issued for the principal.
func (p *PostgreSQLTokenRepository) ListByPrincipal(
	ctx context.Context,
	principalID string,
) ([]*oauthDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM oauth_tokens
			  WHERE principal_id = $1 ORDER BY created_at, id_hash`

	rows, err := querier.QueryContext(ctx, query, principalID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tokens by principal")
	}
	return scanTokens(rows)
}

// CountPrincipalsByClient counts distinct principals with refresh or access tokens of the client.
func (p *PostgreSQLTokenRepository) CountPrincipalsByClient(ctx context.Context, clientID string) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(DISTINCT principal_id) FROM oauth_tokens
			  WHERE client_id = $1 AND token_type IN ($2, $3)`

	var count int64
	err := querier.QueryRowContext(
		ctx,
		query,
		clientID,
		oauthDomain.TokenTypeRefresh,
		oauthDomain.TokenTypeAccess,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count principals")
	}
	return count, nil
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL Token repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}
