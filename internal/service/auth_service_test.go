package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/consultation-api/internal/models"
	appErrors "github.com/noah-isme/consultation-api/pkg/errors"
)

func newTestAuthService() *AuthService {
	return NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "consultation-api", TokenTTL: time.Hour})
}

func TestAuthServiceRoundTrip(t *testing.T) {
	svc := newTestAuthService()

	token, expiresAt, err := svc.GenerateToken(CallerIdentity{UserID: "t1", Role: models.RoleTeacher, ConsultantID: "staff-7", Email: "lee@example.com"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "t1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	assert.Equal(t, "staff-7", claims.ConsultantScope())
}

func TestAuthServiceRejectsWrongSecret(t *testing.T) {
	other := NewAuthService(nil, AuthConfig{AccessTokenSecret: "other", Issuer: "consultation-api"})
	token, _, err := other.GenerateToken(CallerIdentity{UserID: "t1", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = newTestAuthService().ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := newTestAuthService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.GenerateToken(CallerIdentity{UserID: "t1", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = newTestAuthService().ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceRejectsWrongIssuer(t *testing.T) {
	other := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "someone-else"})
	token, _, err := other.GenerateToken(CallerIdentity{UserID: "t1", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = newTestAuthService().ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceRejectsMissingUser(t *testing.T) {
	claims := &models.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "consultation-api",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = newTestAuthService().ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
