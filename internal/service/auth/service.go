package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/nikhil/taskflow/internal/apperr"
	"github.com/nikhil/taskflow/internal/logger"
	"github.com/nikhil/taskflow/internal/models"
	"github.com/nikhil/taskflow/internal/service/membership"
)

// Users is the part of the membership store signup and login need.
type Users interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, userID int64) (models.User, error)
}

var _ Users = (membership.Store)(nil)

type AuthService struct {
	Users  Users
	Tokens *TokenService
	Log    *logger.Logger
	cost   int
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(users Users, tokens *TokenService, log *logger.Logger) *AuthService {
	return &AuthService{Users: users, Tokens: tokens, Log: log, cost: bcrypt.DefaultCost}
}

// Signup registers a user and returns it together with a fresh token.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (models.User, string, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return models.User{}, "", apperr.New(apperr.CodeValidation, "all fields are required")
	}

	hashedPassword, err := HashPassword(password, s.cost)
	if err != nil {
		if isTooLong(err) {
			return models.User{}, "", apperr.New(apperr.CodeValidation, "password is too long")
		}
		return models.User{}, "", apperr.Internal("error hashing password", err)
	}

	user, err := s.Users.CreateUser(ctx, name, email, hashedPassword)
	if err != nil {
		return models.User{}, "", err
	}

	token, err := s.Tokens.GenerateJWT(user.UserID, user.Email)
	if err != nil {
		return models.User{}, "", apperr.Internal("error generating token", err)
	}

	s.Log.Audit("User registered", "user_id", user.UserID)
	return user, token, nil
}

// Login authenticates a user. Unknown emails and wrong passwords are
// reported the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	user, err := s.Users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", models.User{}, apperr.New(apperr.CodeUnauthorized, "invalid email or password")
		}
		return "", models.User{}, err
	}
	if err := CheckPassword(user.Password, password); err != nil {
		s.Log.Warn("Failed login attempt", "user_id", user.UserID)
		return "", models.User{}, apperr.New(apperr.CodeUnauthorized, "invalid email or password")
	}

	token, err := s.Tokens.GenerateJWT(user.UserID, user.Email)
	if err != nil {
		return "", models.User{}, apperr.Internal("error generating token", err)
	}
	user.Password = ""
	return token, user, nil
}

// Profile returns the user without the password hash.
func (s *AuthService) Profile(ctx context.Context, userID int64) (models.User, error) {
	user, err := s.Users.FindUserByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}
