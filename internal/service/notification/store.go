package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nikhil/taskflow/internal/apperr"
	"github.com/nikhil/taskflow/internal/database"
	"github.com/nikhil/taskflow/internal/models"
)

// Store persists notification records.
type Store struct {
	DB  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, now: time.Now}
}

// Record inserts a notification using exec, which may be a transaction.
func (s *Store) Record(ctx context.Context, exec database.Executor, recipient string, senderID int64, message string) (models.Notification, error) {
	n := models.Notification{
		RecipientEmail: models.NormalizeEmail(recipient),
		SenderID:       senderID,
		Message:        message,
		CreatedAt:      s.now().UTC().Unix(),
	}

	query := `INSERT INTO notifications (recipient_email, sender_id, message, is_read, created_at) VALUES (?, ?, ?, 0, ?)`
	result, err := exec.ExecContext(ctx, query, n.RecipientEmail, n.SenderID, n.Message, n.CreatedAt)
	if err != nil {
		return models.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	if n.ID, err = result.LastInsertId(); err != nil {
		return models.Notification{}, fmt.Errorf("notification id: %w", err)
	}
	return n, nil
}

// ListForRecipient returns the notifications addressed to email, newest first.
func (s *Store) ListForRecipient(ctx context.Context, email string, unreadOnly bool) ([]models.Notification, error) {
	query := `SELECT notification_id, recipient_email, sender_id, message, is_read, created_at
		FROM notifications WHERE recipient_email = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC, notification_id DESC`

	rows, err := s.DB.QueryContext(ctx, query, models.NormalizeEmail(email))
	if err != nil {
		return nil, apperr.Internal("failed to list notifications", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var isRead int
		if err := rows.Scan(&n.ID, &n.RecipientEmail, &n.SenderID, &n.Message, &isRead, &n.CreatedAt); err != nil {
			return nil, apperr.Internal("failed to read notifications", err)
		}
		n.IsRead = isRead != 0
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("failed to read notifications", err)
	}
	return notifications, nil
}

// MarkRead marks a notification read. Only its recipient may do so.
func (s *Store) MarkRead(ctx context.Context, notificationID int64, email string) error {
	var recipient string
	err := s.DB.QueryRowContext(ctx, `SELECT recipient_email FROM notifications WHERE notification_id = ?`, notificationID).Scan(&recipient)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.CodeNotFound, "notification not found")
	}
	if err != nil {
		return apperr.Internal("failed to load notification", err)
	}
	if recipient != models.NormalizeEmail(email) {
		return apperr.New(apperr.CodeForbidden, "notification belongs to another user")
	}

	if _, err := s.DB.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE notification_id = ?`, notificationID); err != nil {
		return apperr.Internal("failed to update notification", err)
	}
	return nil
}
