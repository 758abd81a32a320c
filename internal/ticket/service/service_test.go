package service

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
)

func TestIDGenerator_GenerateID(t *testing.T) {
	generator := NewIDGenerator()

	t.Run("Success_PrefixAndEncoding", func(t *testing.T) {
		id, err := generator.GenerateID("TGT-")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(id, "TGT-"))
		decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(id, "TGT-"))
		require.NoError(t, err)
		assert.Len(t, decoded, idEntropyBytes)
	})

	t.Run("Success_Unique", func(t *testing.T) {
		seen := make(map[string]struct{})
		for i := 0; i < 100; i++ {
			id, err := generator.GenerateID("ST-")
			require.NoError(t, err)
			_, dup := seen[id]
			assert.False(t, dup)
			seen[id] = struct{}{}
		}
	})
}

func TestAuthenticationPolicy_Authorize(t *testing.T) {
	policy := NewAuthenticationPolicy([]string{"mallory"})
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		err := policy.Authorize(ctx, ticketDomain.Authentication{PrincipalID: "alice"})
		assert.NoError(t, err)
	})

	t.Run("Error_BlankPrincipal", func(t *testing.T) {
		err := policy.Authorize(ctx, ticketDomain.Authentication{PrincipalID: "  "})
		assert.ErrorIs(t, err, ticketDomain.ErrAuthenticationRejected)
	})

	t.Run("Error_DisabledPrincipal", func(t *testing.T) {
		err := policy.Authorize(ctx, ticketDomain.Authentication{PrincipalID: "mallory"})
		assert.ErrorIs(t, err, ticketDomain.ErrAuthenticationRejected)
	})
}
