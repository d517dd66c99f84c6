package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/chasfatacademy/exam-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) (*AuthService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
	return NewAuthService(cfg, rdb), mr
}

func TestPasswordHashRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService(t)

	hash, err := svc.HashPassword("exam-pass-123")
	require.NoError(t, err)
	assert.NotEqual(t, "exam-pass-123", hash)

	assert.NoError(t, svc.CheckPassword(hash, "exam-pass-123"))
	assert.ErrorIs(t, svc.CheckPassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestStudentTokenCarriesClaims(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	token, err := svc.GenerateStudentToken(ctx, 42, "CSC/2025/042")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeStudent, claims.TokenType)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "CSC/2025/042", claims.MatricNo)
	assert.NotEmpty(t, claims.ID)
}

func TestSecondStudentLoginRejected(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.GenerateStudentToken(ctx, 7, "CSC/2025/007")
	require.NoError(t, err)

	_, err = svc.GenerateStudentToken(ctx, 7, "CSC/2025/007")
	assert.ErrorIs(t, err, ErrLoginAlreadyActive)
}

func TestRejectedLoginKeepsFirstDeviceValid(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	first, err := svc.GenerateStudentToken(ctx, 8, "CSC/2025/008")
	require.NoError(t, err)
	firstClaims, err := svc.ValidateToken(first)
	require.NoError(t, err)

	// The losing login must not overwrite the JTI the holder signed in with.
	_, err = svc.GenerateStudentToken(ctx, 8, "CSC/2025/008")
	require.ErrorIs(t, err, ErrLoginAlreadyActive)

	assert.NoError(t, svc.ValidateStudentLogin(ctx, 8, firstClaims.ID))
}

func TestResetStudentLoginFreesSlot(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.GenerateStudentToken(ctx, 7, "CSC/2025/007")
	require.NoError(t, err)

	require.NoError(t, svc.ResetStudentLogin(ctx, 7))

	_, err = svc.GenerateStudentToken(ctx, 7, "CSC/2025/007")
	assert.NoError(t, err)
}

func TestValidateStudentLoginMatchesJTI(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	token, err := svc.GenerateStudentToken(ctx, 9, "CSC/2025/009")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	assert.NoError(t, svc.ValidateStudentLogin(ctx, 9, claims.ID))
	assert.Error(t, svc.ValidateStudentLogin(ctx, 9, "some-other-jti"))
}

func TestLoginSlotExpiresWithToken(t *testing.T) {
	svc, mr := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.GenerateStudentToken(ctx, 11, "CSC/2025/011")
	require.NoError(t, err)

	// Redis TTL matches the JWT lifetime; once it lapses, a new login works.
	mr.FastForward(2 * time.Hour)

	_, err = svc.GenerateStudentToken(ctx, 11, "CSC/2025/011")
	assert.NoError(t, err)
}

func TestExaminerTokenRejectedForStudentRoutes(t *testing.T) {
	svc, _ := newTestAuthService(t)

	token, err := svc.GenerateExaminerToken(3)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeExaminer, claims.TokenType)
	assert.NotEqual(t, TokenTypeStudent, claims.TokenType)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, _ := newTestAuthService(t)

	token, err := svc.GenerateExaminerToken(3)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "x")
	assert.Error(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
