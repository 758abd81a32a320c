package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	oauthUseCase "github.com/allisson/casoauth/internal/oauth/usecase"
)

// RunCreatePersonalToken provisions a personal token. The printed id is what the holder
// exchanges at the token endpoint with grant_type=personal_token.
func RunCreatePersonalToken(
	ctx context.Context,
	personalTokenUseCase oauthUseCase.PersonalTokenUseCase,
	logger *slog.Logger,
	name string,
	principalID string,
	scopes string,
	format string,
	writer io.Writer,
) error {
	logger.Info("creating personal token",
		slog.String("name", name),
		slog.String("principal_id", principalID),
	)

	personalToken, err := personalTokenUseCase.Create(ctx, &oauthDomain.CreatePersonalTokenInput{
		Name:        name,
		PrincipalID: principalID,
		Scopes:      splitScopes(scopes),
	})
	if err != nil {
		return fmt.Errorf("failed to create personal token: %w", err)
	}

	if format == "json" {
		writeJSON(writer, map[string]any{
			"personal_token": personalToken.ID,
			"name":           personalToken.Name,
			"principal_id":   personalToken.PrincipalID,
			"scopes":         personalToken.Scopes,
		})
	} else {
		_, _ = fmt.Fprintln(writer, "\nPersonal token created successfully!")
		_, _ = fmt.Fprintf(writer, "Personal Token: %s\n", personalToken.ID)
		_, _ = fmt.Fprintf(writer, "Principal: %s\n", personalToken.PrincipalID)
		_, _ = fmt.Fprintf(writer, "Scopes: %s\n", strings.Join(personalToken.Scopes, " "))
	}

	logger.Info("personal token created successfully",
		slog.String("principal_id", personalToken.PrincipalID),
		slog.Int("scopes", len(personalToken.Scopes)),
	)

	return nil
}

// splitScopes accepts scope names separated by spaces, commas or both.
func splitScopes(scopes string) []string {
	return strings.FieldsFunc(scopes, func(r rune) bool {
		return r == ',' || r == ' '
	})
}
