package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/domain"
)

var tokenUser = &domain.User{ID: "0b7f6c4c-1111-4222-8333-444455556666", Email: "alice@example.com", Role: domain.RoleAdmin}

func TestTokenService_IssueVerify(t *testing.T) {
	svc, err := NewTokenService("s3cret", time.Minute)
	require.NoError(t, err)

	token, err := svc.Issue(tokenUser)
	require.NoError(t, err)

	id, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{ID: tokenUser.ID, Email: tokenUser.Email, Role: domain.RoleAdmin}, id)
}

func TestTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService("  ", time.Minute)
	require.Error(t, err)
}

func TestTokenService_Rejects(t *testing.T) {
	svc, err := NewTokenService("s3cret", time.Minute)
	require.NoError(t, err)
	other, err := NewTokenService("different", time.Minute)
	require.NoError(t, err)

	foreign, err := other.Issue(tokenUser)
	require.NoError(t, err)

	issued := time.Now().Add(-2 * time.Minute)
	old := svc.(*tokenService)
	expiredSvc := &tokenService{secret: old.secret, ttl: time.Minute, now: func() time.Time { return issued }}
	expired, err := expiredSvc.Issue(tokenUser)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: tokenUser.ID, Email: tokenUser.Email, Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: tokenUser.ID, Email: tokenUser.Email, Role: domain.RoleUser,
	}).SignedString(old.secret)
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: tokenUser.ID, Email: tokenUser.Email, Role: "ROOT",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(old.secret)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   foreign,
		"expired":        expired,
		"alg none":       unsigned,
		"missing expiry": noExpiry,
		"unknown role":   badRole,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(token)
			require.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}
}
