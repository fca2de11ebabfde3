package database_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/taskflow/internal/database"
	"github.com/nikhil/taskflow/internal/database/dbtest"
)

func TestIsUniqueViolation(t *testing.T) {
	db := dbtest.New(t)
	ctx := t.Context()

	_, err := db.ExecContext(ctx, `INSERT INTO users (name, email, password, created_at) VALUES (?, ?, ?, ?)`, "Alice", "alice@x.com", "h", 1)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO users (name, email, password, created_at) VALUES (?, ?, ?, ?)`, "Alice 2", "alice@x.com", "h", 2)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))

	assert.True(t, database.IsUniqueViolation(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, database.IsUniqueViolation(&mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}))
	assert.False(t, database.IsUniqueViolation(errors.New("other")))
}

func TestPendingInvitationIndex(t *testing.T) {
	db := dbtest.New(t)
	ctx := t.Context()

	insert := `INSERT INTO invitations (project_id, invitee_email, inviter_id, status, pending_key, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := db.ExecContext(ctx, insert, 7, "bob@x.com", 1, "declined", nil, 1)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, 7, "bob@x.com", 1, "declined", nil, 2)
	require.NoError(t, err, "resolved invitations never collide")

	_, err = db.ExecContext(ctx, insert, 7, "bob@x.com", 1, "pending", 1, 3)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, 7, "bob@x.com", 2, "pending", 1, 4)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestWithTxRollsBack(t *testing.T) {
	db := dbtest.New(t)
	ctx := t.Context()
	boom := errors.New("boom")

	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO projects (name, description, owner_id, created_at) VALUES (?, ?, ?, ?)`, "p", "", 1, 1); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, dbtest.Count(t, db, "projects", ""))

	err = database.WithTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO projects (name, description, owner_id, created_at) VALUES (?, ?, ?, ?)`, "p", "", 1, 1)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, dbtest.Count(t, db, "projects", ""))
}
