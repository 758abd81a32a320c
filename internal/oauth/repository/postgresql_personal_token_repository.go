package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/allisson/casoauth/internal/database"
	apperrors "github.com/allisson/casoauth/internal/errors"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
)

// PostgreSQLPersonalTokenRepository implements PersonalToken persistence for PostgreSQL.
type PostgreSQLPersonalTokenRepository struct {
	db *sql.DB
}

// Create inserts a new PersonalToken into the PostgreSQL database.
func (p *PostgreSQLPersonalTokenRepository) Create(
	ctx context.Context,
	personalToken *oauthDomain.PersonalToken,
) error {
	querier := database.GetTx(ctx, p.db)

	scopesJSON, err := marshalScopes(personalToken.Scopes)
	if err != nil {
		return err
	}

	query := `INSERT INTO personal_tokens (id_hash, name, principal_id, scopes, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err = querier.ExecContext(
		ctx,
		query,
		oauthDomain.HashTokenID(personalToken.ID),
		personalToken.Name,
		personalToken.PrincipalID,
		scopesJSON,
		personalToken.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create personal token")
	}
	return nil
}

// Get retrieves a PersonalToken by the digest of its id.
func (p *PostgreSQLPersonalTokenRepository) Get(
	ctx context.Context,
	personalTokenID string,
) (*oauthDomain.PersonalToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id_hash, name, principal_id, scopes, created_at FROM personal_tokens WHERE id_hash = $1`

	var personalToken oauthDomain.PersonalToken
	var scopesJSON []byte

	err := querier.QueryRowContext(ctx, query, oauthDomain.HashTokenID(personalTokenID)).Scan(
		&personalToken.IDHash,
		&personalToken.Name,
		&personalToken.PrincipalID,
		&scopesJSON,
		&personalToken.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oauthDomain.ErrPersonalTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get personal token")
	}

	if err := json.Unmarshal(scopesJSON, &personalToken.Scopes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal personal token scopes")
	}

	personalToken.ID = personalTokenID
	return &personalToken, nil
}

// NewPostgreSQLPersonalTokenRepository creates a new PostgreSQL PersonalToken repository.
func NewPostgreSQLPersonalTokenRepository(db *sql.DB) *PostgreSQLPersonalTokenRepository {
	return &PostgreSQLPersonalTokenRepository{db: db}
}
