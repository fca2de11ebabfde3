package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nikhil/taskflow/internal/apperr"
	"github.com/nikhil/taskflow/internal/database/dbtest"
	"github.com/nikhil/taskflow/internal/logger"
	"github.com/nikhil/taskflow/internal/service/membership"
)

func newTestService(t *testing.T) *AuthService {
	t.Helper()
	log := logger.NewNop()
	users := membership.NewSQLStore(dbtest.New(t), log)
	s := NewAuthService(users, NewTokenService("secret", time.Hour), log)
	s.cost = bcrypt.MinCost
	return s
}

func TestSignupAndLogin(t *testing.T) {
	s := newTestService(t)
	ctx := t.Context()

	user, token, err := s.Signup(ctx, "Alice", "Alice@X.com", "pa55word")
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", user.Email)
	assert.NotEmpty(t, token)

	id, err := s.Tokens.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: user.UserID, Email: "alice@x.com"}, id)

	loginToken, loggedIn, err := s.Login(ctx, "alice@x.com", "pa55word")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)
	assert.Equal(t, user.UserID, loggedIn.UserID)
	assert.Empty(t, loggedIn.Password)

	profile, err := s.Profile(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.Name)
	assert.Empty(t, profile.Password)
}

func TestSignupErrors(t *testing.T) {
	s := newTestService(t)
	ctx := t.Context()

	_, _, err := s.Signup(ctx, "Alice", "alice@x.com", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, _, err = s.Signup(ctx, "Alice", "alice@x.com", "pw")
	require.NoError(t, err)
	_, _, err = s.Signup(ctx, "Alice 2", "alice@x.com", "pw")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestService(t)
	ctx := t.Context()

	_, _, err := s.Signup(ctx, "Alice", "alice@x.com", "right")
	require.NoError(t, err)

	_, _, err = s.Login(ctx, "alice@x.com", "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, _, err = s.Login(ctx, "nobody@x.com", "right")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAuthenticateRejects(t *testing.T) {
	tokens := NewTokenService("secret", time.Minute)

	_, err := tokens.Authenticate("")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = tokens.Authenticate("not-a-jwt")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	other, err := NewTokenService("other", time.Minute).GenerateJWT(1, "a@x.com")
	require.NoError(t, err)
	_, err = tokens.Authenticate(other)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": 1, "email": "a@x.com", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Authenticate(unsigned)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAuthenticateExpired(t *testing.T) {
	tokens := NewTokenService("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	tokens.now = func() time.Time { return issued }

	token, err := tokens.GenerateJWT(1, "a@x.com")
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Authenticate(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
