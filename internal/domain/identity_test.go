package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clubhub/club-gateway/internal/domain"
)

func TestDisplayName(t *testing.T) {
	t.Run("full name wins", func(t *testing.T) {
		id := domain.Identity{FirstName: "Alice", LastName: "Baker", Username: "ab", Email: "a@b.com"}
		require.Equal(t, "Alice Baker", id.DisplayName())
	})

	t.Run("first name alone", func(t *testing.T) {
		id := domain.Identity{FirstName: "Alice", Username: "ab"}
		require.Equal(t, "Alice", id.DisplayName())
	})

	t.Run("falls back to username then email", func(t *testing.T) {
		require.Equal(t, "ab", domain.Identity{Username: "ab", Email: "a@b.com"}.DisplayName())
		require.Equal(t, "a@b.com", domain.Identity{Email: "a@b.com"}.DisplayName())
	})
}
