package membership

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/nikhil/taskflow/internal/apperr"
	"github.com/nikhil/taskflow/internal/database"
	"github.com/nikhil/taskflow/internal/models"
)

// CreateUser inserts a user. The email is normalized and must be unique.
func (s *SQLStore) CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	user := models.User{
		Name:      strings.TrimSpace(name),
		Email:     models.NormalizeEmail(email),
		CreatedAt: s.now().UTC().Unix(),
	}
	if user.Name == "" || user.Email == "" || passwordHash == "" {
		return models.User{}, apperr.New(apperr.CodeValidation, "all fields are required")
	}

	query := `INSERT INTO users (name, email, password, created_at) VALUES (?, ?, ?, ?)`
	result, err := s.DB.ExecContext(ctx, query, user.Name, user.Email, passwordHash, user.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, apperr.Wrap(apperr.CodeConflict, "email already registered", err)
		}
		return models.User{}, apperr.Internal("error creating user", err)
	}
	if user.UserID, err = result.LastInsertId(); err != nil {
		return models.User{}, apperr.Internal("error creating user", err)
	}
	return user, nil
}

// FindUserByEmail returns the user including the password hash.
func (s *SQLStore) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT user_id, name, email, password, created_at FROM users WHERE email = ?`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, models.NormalizeEmail(email)))
}

func (s *SQLStore) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	query := `SELECT user_id, name, email, password, created_at FROM users WHERE user_id = ?`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userID))
}

func (s *SQLStore) scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.UserID, &u.Name, &u.Email, &u.Password, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperr.New(apperr.CodeNotFound, "user not found")
	}
	if err != nil {
		return models.User{}, apperr.Internal("error fetching user", err)
	}
	return u, nil
}
