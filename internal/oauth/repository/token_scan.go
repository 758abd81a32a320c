// Package repository implements persistence for OAuth tokens, clients and personal tokens.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(), plus in-memory implementations for single-node deployments.
package repository

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	apperrors "github.com/allisson/casoauth/internal/errors"
	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
)

const tokenColumns = `id_hash, token_type, access_variant, client_id, principal_id, scopes, ticket_id, service, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken(row rowScanner) (*oauthDomain.Token, error) {
	var token oauthDomain.Token
	var scopesJSON []byte

	if err := row.Scan(
		&token.IDHash,
		&token.Type,
		&token.Variant,
		&token.ClientID,
		&token.PrincipalID,
		&scopesJSON,
		&token.TicketID,
		&token.Service,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(scopesJSON, &token.Scopes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token scopes")
	}

	return &token, nil
}

// scanTokenByID scans a row loaded by id, restoring the id the digest was computed from.
func scanTokenByID(row rowScanner, tokenID string) (*oauthDomain.Token, error) {
	token, err := scanToken(row)
	if err != nil {
		return nil, err
	}
	token.ID = tokenID
	return token, nil
}

func scanTokens(rows *sql.Rows) ([]*oauthDomain.Token, error) {
	defer func() {
		_ = rows.Close()
	}()

	tokens := make([]*oauthDomain.Token, 0)
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan token")
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tokens")
	}

	return tokens, nil
}

func marshalScopes(scopes []string) ([]byte, error) {
	if scopes == nil {
		scopes = []string{}
	}
	payload, err := json.Marshal(scopes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal scopes")
	}
	return payload, nil
}

// isPostgreSQLUniqueViolation reports a unique_violation (SQLSTATE 23505).
func isPostgreSQLUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isMySQLUniqueViolation reports a duplicate entry error (error number 1062).
func isMySQLUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
