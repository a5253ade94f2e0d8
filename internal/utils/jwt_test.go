package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkarpov/manufacturer-api/internal/utils"
)

const testSecret = "test-secret"

func TestAccessToken_RoundTrip(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "user-42", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	require.WithinDuration(t, time.Now().UTC().Add(time.Hour), tok.Exp, 5*time.Second)

	sub, err := utils.ParseAccessToken(testSecret, tok.Token)
	require.NoError(t, err)
	require.Equal(t, "user-42", sub)
}

func TestParseAccessToken_Expired(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "user-42", -1)
	require.NoError(t, err)

	_, err = utils.ParseAccessToken(testSecret, tok.Token)
	require.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "user-42", 60)
	require.NoError(t, err)

	_, err = utils.ParseAccessToken("other-secret", tok.Token)
	require.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestParseAccessToken_Garbage(t *testing.T) {
	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := utils.ParseAccessToken(testSecret, raw)
		require.ErrorIs(t, err, utils.ErrInvalidToken)
	}
}
