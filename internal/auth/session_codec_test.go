package auth_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clubhub/club-gateway/internal/auth"
	"github.com/clubhub/club-gateway/internal/domain"
)

func testSession() domain.ExternalSession {
	return domain.ExternalSession{
		SessionID: "sess-1",
		Identity: domain.Identity{
			ID:        "user-1",
			Email:     "a@b.com",
			Username:  "ab",
			FirstName: "Alice",
			LastName:  "Baker",
			Roles:     []string{"member", "organizer"},
			Provider:  domain.ProviderGoogle,
		},
		Pair: domain.TokenPair{
			AccessToken:      "access-1",
			RefreshToken:     "refresh-1",
			AccessExpiresAt:  time.Now().Add(15 * time.Minute).Truncate(time.Second),
			RefreshExpiresAt: time.Now().Add(7 * 24 * time.Hour).Truncate(time.Second),
		},
		Remember: true,
	}
}

func TestSessionCodecRoundTrip(t *testing.T) {
	codec := auth.NewSessionCodec("codec-secret", time.Hour)
	sess := testSession()

	raw, err := codec.Encode(sess)
	require.NoError(t, err)

	decoded, err := codec.Decode(raw)
	require.NoError(t, err)

	require.Equal(t, sess.SessionID, decoded.SessionID)
	require.Equal(t, sess.Identity, decoded.Identity)
	require.Equal(t, sess.Pair.AccessToken, decoded.Pair.AccessToken)
	require.Equal(t, sess.Pair.RefreshToken, decoded.Pair.RefreshToken)
	require.WithinDuration(t, sess.Pair.AccessExpiresAt, decoded.Pair.AccessExpiresAt, time.Second)
	require.WithinDuration(t, sess.Pair.RefreshExpiresAt, decoded.Pair.RefreshExpiresAt, time.Second)
	require.True(t, decoded.Remember)
	require.False(t, decoded.ExpiresAt.IsZero())
}

func TestSessionCodecRejectsWrongSecret(t *testing.T) {
	sess := testSession()

	raw, err := auth.NewSessionCodec("secret-a", time.Hour).Encode(sess)
	require.NoError(t, err)

	_, err = auth.NewSessionCodec("secret-b", time.Hour).Decode(raw)
	require.Error(t, err)
}

func TestSessionCodecRejectsExpiredSession(t *testing.T) {
	codec := auth.NewSessionCodec("codec-secret", time.Hour)
	sess := testSession()
	sess.IssuedAt = time.Now().Add(-2 * time.Hour)
	sess.ExpiresAt = time.Now().Add(-time.Hour)

	raw, err := codec.Encode(sess)
	require.NoError(t, err)

	_, err = codec.Decode(raw)
	require.Error(t, err)
}

func TestProjectionNeverCarriesRefreshToken(t *testing.T) {
	proj := testSession().Project()

	require.Equal(t, "access-1", proj.AccessToken)
	require.Equal(t, []string{"member", "organizer"}, proj.Roles)
	require.Equal(t, domain.ProviderGoogle, proj.Provider)

	raw, err := json.Marshal(proj)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "refresh-1")
}
