package jwtx_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/caronte/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func mustSign(t *testing.T, claims jwtx.Claims, secret string) string {
	t.Helper()
	raw, err := jwtx.SignHS256(claims, []byte(secret))
	require.NoError(t, err)
	return raw
}

func TestDecode(t *testing.T) {
	now := time.Now()
	claims, err := jwtx.NewUserClaims(testUser(), "caronte", time.Hour, now)
	require.NoError(t, err)
	raw := mustSign(t, claims, "secret")

	t.Run("valid token", func(t *testing.T) {
		tok, err := jwtx.Decode(raw)
		require.NoError(t, err)
		require.Equal(t, raw, tok.Raw)
		require.Equal(t, "HS256", tok.Alg())
		require.Equal(t, "caronte", tok.Claims.Issuer)
		require.NotEmpty(t, tok.Signature)

		u, err := tok.User()
		require.NoError(t, err)
		require.Equal(t, "usr-0001", u.URIUser)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := jwtx.Decode("")
		require.ErrorIs(t, err, jwtx.ErrMissing)
	})

	t.Run("segment count other than three", func(t *testing.T) {
		for _, in := range []string{
			"abc",
			"abc.def",
			"a.b.c.d",
			"a.b.c.d.e",
			raw + ".extra",
			strings.Repeat(".", 5),
		} {
			_, err := jwtx.Decode(in)
			require.ErrorIs(t, err, jwtx.ErrMalformed, "input %q", in)
		}
	})

	t.Run("empty segment", func(t *testing.T) {
		parts := strings.Split(raw, ".")
		for _, in := range []string{
			"." + parts[1] + "." + parts[2],
			parts[0] + ".." + parts[2],
			parts[0] + "." + parts[1] + ".",
			"..",
		} {
			_, err := jwtx.Decode(in)
			require.ErrorIs(t, err, jwtx.ErrMalformed, "input %q", in)
		}
	})

	t.Run("undecodable claims", func(t *testing.T) {
		parts := strings.Split(raw, ".")
		_, err := jwtx.Decode(parts[0] + ".!!!." + parts[2])
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)

		notJSON := base64.RawURLEncoding.EncodeToString([]byte("not json"))
		_, err = jwtx.Decode(parts[0] + "." + notJSON + "." + parts[2])
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})

	t.Run("missing user claim", func(t *testing.T) {
		noUser := claims
		noUser.User = jwtx.UserClaim{}
		_, err := jwtx.Decode(mustSign(t, noUser, "secret"))
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})

	t.Run("missing alg", func(t *testing.T) {
		parts := strings.Split(raw, ".")
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"typ":"JWT"}`))
		_, err := jwtx.Decode(header + "." + parts[1] + "." + parts[2])
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})
}
