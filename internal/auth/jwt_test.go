package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", 0)

	tok, err := m.Issue("a@x.com")
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, "a@x.com", claims.Subject)
	require.Equal(t, Issuer, claims.Issuer)
	require.Nil(t, claims.ExpiresAt, "tokens are non-expiring by default")
}

func TestVerifyAcceptsTokensWithoutIssuer(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "a@x.com"})
	raw, err := tok.SignedString([]byte("s"))
	require.NoError(t, err)

	claims, err := NewManager("s", 0).Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", claims.Email)
}

func TestVerifyRejectsForeignIssuer(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:            "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	})
	raw, err := tok.SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = NewManager("s", 0).Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensAreBoundToTheirEmail(t *testing.T) {
	m := NewManager("test-secret", 0)

	a, err := m.Issue("a@x.com")
	require.NoError(t, err)
	b, err := m.Issue("b@x.com")
	require.NoError(t, err)

	ca, err := m.Verify(a)
	require.NoError(t, err)
	cb, err := m.Verify(b)
	require.NoError(t, err)

	require.Equal(t, "a@x.com", ca.Email)
	require.Equal(t, "b@x.com", cb.Email)
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	tok, err := NewManager("secret-one", 0).Issue("a@x.com")
	require.NoError(t, err)

	_, err = NewManager("secret-two", 0).Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	_, err := NewManager("s", 0).Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithm(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{Email: "a@x.com"})
	raw, err := tok.SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = NewManager("s", 0).Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRequiresEmail(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{})
	raw, err := tok.SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = NewManager("s", 0).Verify(raw)
	require.True(t, errors.Is(err, ErrMissingEmail))
}

func TestVerifyHonoursTTL(t *testing.T) {
	m := NewManager("s", time.Hour)

	tok, err := m.Issue("a@x.com")
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	raw, err := expired.SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = m.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToleratesSmallClockSkew(t *testing.T) {
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager("s", time.Minute)
	m.now = func() time.Time { return issued }

	tok, err := m.Issue("a@x.com")
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(time.Minute + 20*time.Second) }
	_, err = m.Verify(tok)
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(time.Minute + 40*time.Second) }
	_, err = m.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}
