package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/taskflow/internal/apperr"
	"github.com/nikhil/taskflow/internal/database/dbtest"
	"github.com/nikhil/taskflow/internal/logger"
	"github.com/nikhil/taskflow/internal/models"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	return NewSQLStore(dbtest.New(t), logger.NewNop())
}

func mustUser(t *testing.T, s *SQLStore, name, email string) models.User {
	t.Helper()
	u, err := s.CreateUser(t.Context(), name, email, "hash")
	require.NoError(t, err)
	return u
}

func TestCreateProjectAddsOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	alice := mustUser(t, s, "Alice", "alice@x.com")

	p, err := s.CreateProject(ctx, "  Apollo ", "moon", alice.UserID)
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "Apollo", p.Name)
	assert.Equal(t, alice.UserID, p.OwnerID)

	role, err := s.MemberRole(ctx, p.ID, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, role)

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestCreateProjectValidation(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateProject(t.Context(), "  ", "d", 1)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.CreateProject(t.Context(), "name", "d", 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	assert.Equal(t, 0, dbtest.Count(t, s.DB, "projects", ""))
}

func TestCreateProjectMembershipFailureLeavesNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	_, err := s.DB.ExecContext(ctx, `DROP TABLE project_members`)
	require.NoError(t, err)

	_, err = s.CreateProject(ctx, "Apollo", "", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrPartialFailure)
	assert.Equal(t, 0, dbtest.Count(t, s.DB, "projects", ""))
}

func TestGetProjectNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetProject(t.Context(), 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListProjectsForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	alice := mustUser(t, s, "Alice", "alice@x.com")
	bob := mustUser(t, s, "Bob", "bob@x.com")

	a1, err := s.CreateProject(ctx, "A1", "", alice.UserID)
	require.NoError(t, err)
	_, err = s.CreateProject(ctx, "B1", "", bob.UserID)
	require.NoError(t, err)
	require.NoError(t, s.AddMember(ctx, s.DB, a1.ID, bob.UserID, models.RoleMember))

	aliceProjects, err := s.ListProjectsForUser(ctx, alice.UserID)
	require.NoError(t, err)
	require.Len(t, aliceProjects, 1)
	assert.Equal(t, "A1", aliceProjects[0].Name)

	bobProjects, err := s.ListProjectsForUser(ctx, bob.UserID)
	require.NoError(t, err)
	names := []string{}
	for _, p := range bobProjects {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"A1", "B1"}, names)

	none, err := s.ListProjectsForUser(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListMembers(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	alice := mustUser(t, s, "Alice", "alice@x.com")
	bob := mustUser(t, s, "Bob", "bob@x.com")

	p, err := s.CreateProject(ctx, "Apollo", "", alice.UserID)
	require.NoError(t, err)
	require.NoError(t, s.AddMember(ctx, s.DB, p.ID, bob.UserID, models.RoleMember))

	members, err := s.ListMembers(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	byName := map[string]models.Member{}
	for _, m := range members {
		byName[m.Name] = m
	}
	assert.Equal(t, models.RoleOwner, byName["Alice"].Role)
	assert.Equal(t, models.RoleMember, byName["Bob"].Role)
	assert.Equal(t, "bob@x.com", byName["Bob"].Email)
}

func TestAddMemberDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	alice := mustUser(t, s, "Alice", "alice@x.com")

	p, err := s.CreateProject(ctx, "Apollo", "", alice.UserID)
	require.NoError(t, err)

	err = s.AddMember(ctx, s.DB, p.ID, alice.UserID, models.RoleMember)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestMemberRoleNotMember(t *testing.T) {
	s := newTestStore(t)

	_, err := s.MemberRole(t.Context(), 1, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	u := mustUser(t, s, "Bob", " Bob@X.com ")
	assert.Equal(t, "bob@x.com", u.Email)

	_, err := s.CreateUser(ctx, "Bobby", "bob@x.com", "hash")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = s.CreateUser(ctx, "", "x@x.com", "hash")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	found, err := s.FindUserByEmail(ctx, "BOB@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.UserID, found.UserID)
	assert.Equal(t, "hash", found.Password)

	byID, err := s.FindUserByID(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", byID.Name)

	_, err = s.FindUserByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
