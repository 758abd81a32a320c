package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	oauthDomain "github.com/allisson/casoauth/internal/oauth/domain"
	oauthUseCase "github.com/allisson/casoauth/internal/oauth/usecase"
)

// ClientFlags carries the create-client command line values.
type ClientFlags struct {
	ID          string
	Name        string
	Description string
	RedirectURI string
	AutoApprove bool
}

// RunCreateClient registers an OAuth client and prints its id and plain secret.
// The secret is stored hashed and cannot be recovered later.
//
// Requirements: Database must be migrated and accessible.
func RunCreateClient(
	ctx context.Context,
	clientUseCase oauthUseCase.ClientUseCase,
	logger *slog.Logger,
	flags ClientFlags,
	format string,
	writer io.Writer,
) error {
	logger.Info("creating new client", slog.String("name", flags.Name))

	output, err := clientUseCase.Create(ctx, &oauthDomain.CreateClientInput{
		ID:          flags.ID,
		Name:        flags.Name,
		Description: flags.Description,
		RedirectURI: flags.RedirectURI,
		AutoApprove: flags.AutoApprove,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if format == "json" {
		writeJSON(writer, map[string]string{
			"client_id":     output.ID,
			"client_secret": output.PlainSecret,
		})
	} else {
		_, _ = fmt.Fprintln(writer, "\nClient created successfully!")
		_, _ = fmt.Fprintf(writer, "Client ID: %s\n", output.ID)
		_, _ = fmt.Fprintf(writer, "Client Secret: %s\n", output.PlainSecret)
		_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The secret is shown only once. Store it securely.")
	}

	logger.Info("client created successfully",
		slog.String("client_id", output.ID),
		slog.String("redirect_uri", flags.RedirectURI),
		slog.Bool("auto_approve", flags.AutoApprove),
	)

	return nil
}
