package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	oauthUseCase "github.com/allisson/casoauth/internal/oauth/usecase"
)

// errInvalidClientCredentials is returned when the client id or secret does not match.
var errInvalidClientCredentials = errors.New("invalid client credentials")

// RunRevokeClientTokens revokes every refresh and access token issued to a client.
// When secret is empty it is read from io.Reader so it stays out of shell history.
func RunRevokeClientTokens(
	ctx context.Context,
	tokenUseCase oauthUseCase.TokenUseCase,
	logger *slog.Logger,
	clientID string,
	secret string,
	format string,
	io IOTuple,
) error {
	if secret == "" {
		_, _ = fmt.Fprint(io.Writer, "Enter client secret: ")
		line, err := bufio.NewReader(io.Reader).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read client secret: %w", err)
		}
		secret = strings.TrimSpace(line)
		_, _ = fmt.Fprintln(io.Writer)
	}

	logger.Info("revoking client tokens", slog.String("client_id", clientID))

	revoked, err := tokenUseCase.RevokeClientTokens(ctx, clientID, secret)
	if err != nil {
		return fmt.Errorf("failed to revoke client tokens: %w", err)
	}
	if !revoked {
		return errInvalidClientCredentials
	}

	if format == "json" {
		writeJSON(io.Writer, map[string]any{
			"client_id": clientID,
			"revoked":   true,
		})
	} else {
		_, _ = fmt.Fprintf(io.Writer, "All tokens of client %s were revoked\n", clientID)
	}

	logger.Info("client tokens revoked", slog.String("client_id", clientID))

	return nil
}
