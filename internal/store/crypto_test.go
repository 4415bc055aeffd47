package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clubhub/club-gateway/internal/store"
)

func TestSealerRoundTrip(t *testing.T) {
	sealer := store.NewSealer("store-key")

	sealed, err := sealer.Seal([]byte(`{"session_id":"sess-1"}`))
	require.NoError(t, err)
	require.NotContains(t, string(sealed), "sess-1")

	plain, err := sealer.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, `{"session_id":"sess-1"}`, string(plain))
}

func TestSealerRejectsTamperedRecord(t *testing.T) {
	sealer := store.NewSealer("store-key")

	sealed, err := sealer.Seal([]byte("payload"))
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xff
	_, err = sealer.Open(sealed)
	require.Error(t, err)
}

func TestSealerRejectsWrongKey(t *testing.T) {
	sealed, err := store.NewSealer("key-a").Seal([]byte("payload"))
	require.NoError(t, err)

	_, err = store.NewSealer("key-b").Open(sealed)
	require.Error(t, err)

	_, err = store.NewSealer("key-a").Open([]byte("short"))
	require.Error(t, err)
}
