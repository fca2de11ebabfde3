package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nikhil/taskflow/internal/apperr"
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID int64
	Email  string
}

// Claims are the JWT claims issued at login.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateJWT creates a token for the user that expires after the TTL.
func (t *TokenService) GenerateJWT(userID int64, email string) (string, error) {
	now := t.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Authenticate verifies tokenStr and returns the identity it carries.
func (t *TokenService) Authenticate(tokenStr string) (Identity, error) {
	if tokenStr == "" {
		return Identity{}, apperr.New(apperr.CodeUnauthorized, "missing auth token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, apperr.Wrap(apperr.CodeUnauthorized, "token expired", err)
		}
		return Identity{}, apperr.Wrap(apperr.CodeUnauthorized, "invalid token", err)
	}
	if claims.UserID == 0 || claims.Email == "" {
		return Identity{}, apperr.New(apperr.CodeUnauthorized, "invalid token claims")
	}
	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
