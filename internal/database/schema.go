package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nikhil/taskflow/internal/config"
)

// Bootstrap schema. Existing tables are left untouched.
//
// invitations.pending_key is 1 while an invitation is pending and NULL once
// it is resolved. NULLs never collide in a unique index, so the index allows
// any number of resolved invitations but only one pending one per pair.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		created_at BIGINT NOT NULL,
		UNIQUE KEY uq_users_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		project_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		owner_id BIGINT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS project_members (
		project_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		role VARCHAR(32) NOT NULL,
		joined_at BIGINT NOT NULL,
		PRIMARY KEY (project_id, user_id),
		KEY idx_project_members_user (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS invitations (
		invitation_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		project_id BIGINT NOT NULL,
		invitee_email VARCHAR(255) NOT NULL,
		inviter_id BIGINT NOT NULL,
		status VARCHAR(16) NOT NULL,
		pending_key TINYINT NULL,
		created_at BIGINT NOT NULL,
		resolved_at BIGINT NOT NULL DEFAULT 0,
		UNIQUE KEY uq_invitations_pending (project_id, invitee_email, pending_key)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		notification_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		recipient_email VARCHAR(255) NOT NULL,
		sender_id BIGINT NOT NULL,
		message TEXT NOT NULL,
		is_read TINYINT NOT NULL DEFAULT 0,
		created_at BIGINT NOT NULL,
		KEY idx_notifications_recipient (recipient_email)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		project_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		owner_id INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS project_members (
		project_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		role TEXT NOT NULL,
		joined_at INTEGER NOT NULL,
		PRIMARY KEY (project_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_project_members_user ON project_members(user_id)`,
	`CREATE TABLE IF NOT EXISTS invitations (
		invitation_id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		invitee_email TEXT NOT NULL,
		inviter_id INTEGER NOT NULL,
		status TEXT NOT NULL,
		pending_key INTEGER NULL,
		created_at INTEGER NOT NULL,
		resolved_at INTEGER NOT NULL DEFAULT 0,
		UNIQUE (project_id, invitee_email, pending_key)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		notification_id INTEGER PRIMARY KEY AUTOINCREMENT,
		recipient_email TEXT NOT NULL,
		sender_id INTEGER NOT NULL,
		message TEXT NOT NULL,
		is_read INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_email)`,
}

// InitSchema creates the tables used by the service for the given driver.
func InitSchema(ctx context.Context, db *sql.DB, driver string) error {
	statements := mysqlSchema
	if driver == config.DriverSQLite {
		statements = sqliteSchema
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
