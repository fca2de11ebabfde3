package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nikhil/taskflow/internal/apperr"
	"github.com/nikhil/taskflow/internal/database"
	"github.com/nikhil/taskflow/internal/logger"
	"github.com/nikhil/taskflow/internal/models"
)

// Store owns users, projects and project memberships.
type Store interface {
	CreateProject(ctx context.Context, name, description string, ownerID int64) (models.Project, error)
	ListProjectsForUser(ctx context.Context, userID int64) ([]models.Project, error)
	GetProject(ctx context.Context, projectID int64) (models.Project, error)
	ListMembers(ctx context.Context, projectID int64) ([]models.Member, error)

	MemberRole(ctx context.Context, projectID, userID int64) (models.Role, error)
	AddMember(ctx context.Context, exec database.Executor, projectID, userID int64, role models.Role) error

	CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, userID int64) (models.User, error)
}

// SQLStore implements Store on database/sql with parameterized statements.
type SQLStore struct {
	DB  *sql.DB
	Log *logger.Logger
	now func() time.Time
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(db *sql.DB, log *logger.Logger) *SQLStore {
	return &SQLStore{DB: db, Log: log, now: time.Now}
}

// CreateProject inserts the project and the owner's membership in one
// transaction. When the membership insert fails nothing is kept and the
// error carries CodePartialFailure.
func (s *SQLStore) CreateProject(ctx context.Context, name, description string, ownerID int64) (models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" || ownerID == 0 {
		return models.Project{}, apperr.New(apperr.CodeValidation, "project name and owner are required")
	}

	project := models.Project{
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
		CreatedAt:   s.now().UTC().Unix(),
	}

	var memberErr error
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		query := `INSERT INTO projects (name, description, owner_id, created_at) VALUES (?, ?, ?, ?)`
		result, err := tx.ExecContext(ctx, query, project.Name, project.Description, project.OwnerID, project.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		if project.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("project id: %w", err)
		}

		if err := s.AddMember(ctx, tx, project.ID, ownerID, models.RoleOwner); err != nil {
			memberErr = err
			return err
		}
		return nil
	})
	if err != nil {
		if memberErr != nil {
			s.Log.Error("Failed to add owner as project member", "owner_id", ownerID, "error", err)
			return models.Project{}, apperr.Wrap(apperr.CodePartialFailure, "error assigning owner to project", err)
		}
		s.Log.Error("Failed to create project", "owner_id", ownerID, "error", err)
		return models.Project{}, apperr.Internal("error inserting project", err)
	}

	s.Log.Audit("Project created", "project_id", project.ID, "user_id", ownerID)
	return project, nil
}

// ListProjectsForUser returns every project the user is a member of.
func (s *SQLStore) ListProjectsForUser(ctx context.Context, userID int64) ([]models.Project, error) {
	query := `
		SELECT p.project_id, p.name, p.description, p.owner_id, p.created_at
		FROM projects p
		JOIN project_members pm ON p.project_id = pm.project_id
		WHERE pm.user_id = ?
	`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperr.Internal("failed to get projects", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt); err != nil {
			return nil, apperr.Internal("failed to process projects data", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("failed to process projects data", err)
	}
	return projects, nil
}

func (s *SQLStore) GetProject(ctx context.Context, projectID int64) (models.Project, error) {
	var p models.Project
	query := `SELECT project_id, name, description, owner_id, created_at FROM projects WHERE project_id = ?`
	err := s.DB.QueryRowContext(ctx, query, projectID).Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, apperr.New(apperr.CodeNotFound, "project not found")
	}
	if err != nil {
		return models.Project{}, apperr.Internal("error fetching project", err)
	}
	return p, nil
}

func (s *SQLStore) ListMembers(ctx context.Context, projectID int64) ([]models.Member, error) {
	query := `
		SELECT pm.project_id, pm.user_id, u.name, u.email, pm.role, pm.joined_at
		FROM project_members pm
		JOIN users u ON u.user_id = pm.user_id
		WHERE pm.project_id = ?
		ORDER BY pm.joined_at, pm.user_id
	`
	rows, err := s.DB.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, apperr.Internal("failed to get members", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Name, &m.Email, &m.Role, &m.JoinedAt); err != nil {
			return nil, apperr.Internal("failed to process members data", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("failed to process members data", err)
	}
	return members, nil
}

// MemberRole returns the user's role in the project, or CodeNotFound when
// the user is not a member.
func (s *SQLStore) MemberRole(ctx context.Context, projectID, userID int64) (models.Role, error) {
	var role models.Role
	query := `SELECT role FROM project_members WHERE project_id = ? AND user_id = ?`
	err := s.DB.QueryRowContext(ctx, query, projectID, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.New(apperr.CodeNotFound, "not a project member")
	}
	if err != nil {
		return "", apperr.Internal("failed to check project membership", err)
	}
	return role, nil
}

// AddMember inserts a membership row through exec. A duplicate is reported
// as CodeConflict.
func (s *SQLStore) AddMember(ctx context.Context, exec database.Executor, projectID, userID int64, role models.Role) error {
	query := `INSERT INTO project_members (project_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`
	_, err := exec.ExecContext(ctx, query, projectID, userID, string(role), s.now().UTC().Unix())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Wrap(apperr.CodeConflict, "user is already a member of this project", err)
		}
		return fmt.Errorf("insert project member: %w", err)
	}
	return nil
}
