package authentication

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestTokenRoundTrip(t *testing.T) {
	keyring.MockInit()

	_, err := GetTokens()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	creds := &StoredCredentials{AccessToken: "a", RefreshToken: "r", UserID: "u-1", Email: "me@example.com", ExpiresAt: 100}
	require.NoError(t, StoreTokens(creds))

	got, err := GetTokens()
	require.NoError(t, err)
	assert.Equal(t, creds, got)

	require.NoError(t, DeleteTokens())
	require.NoError(t, DeleteTokens(), "deleting twice is fine")
	_, err = GetTokens()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestExpired(t *testing.T) {
	now := time.Unix(1000, 0)

	assert.True(t, (&StoredCredentials{ExpiresAt: 1000}).Expired(now))
	assert.False(t, (&StoredCredentials{ExpiresAt: 1001}).Expired(now))
	assert.False(t, (&StoredCredentials{}).Expired(now), "unknown expiry is trusted")
}
