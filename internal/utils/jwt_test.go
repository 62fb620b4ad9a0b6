package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartier55/coachbox-backend/internal/utils"
)

const testSecret = "unit-test-secret"

func TestNewSignedTokenRoundTrip(t *testing.T) {
	token, exp, err := utils.NewSignedToken(testSecret, 42, "coach@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := utils.ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "coach@example.com", claims.Email)
}

func TestParseTokenExpired(t *testing.T) {
	token, _, err := utils.NewSignedToken(testSecret, 1, "a@b.c", -time.Minute)
	require.NoError(t, err)

	_, err = utils.ParseToken(testSecret, token)
	assert.ErrorIs(t, err, utils.ErrTokenExpired)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, _, err := utils.NewSignedToken(testSecret, 1, "a@b.c", time.Hour)
	require.NoError(t, err)

	// A token signed with one secret must read as invalid, not expired,
	// under another. Access and refresh tokens rely on this to stay in
	// their own lanes.
	_, err = utils.ParseToken("a-different-secret", token)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrTokenInvalid)
	assert.NotErrorIs(t, err, utils.ErrTokenExpired)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := utils.ParseToken(testSecret, "not-a-jwt")
	assert.ErrorIs(t, err, utils.ErrTokenInvalid)
}
