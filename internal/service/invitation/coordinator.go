package invitation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nikhil/taskflow/internal/apperr"
	"github.com/nikhil/taskflow/internal/database"
	"github.com/nikhil/taskflow/internal/logger"
	"github.com/nikhil/taskflow/internal/metrics"
	"github.com/nikhil/taskflow/internal/models"
	"github.com/nikhil/taskflow/internal/service/membership"
	"github.com/nikhil/taskflow/internal/service/notification"
)

// Pusher delivers a real-time message and reports how many sessions got it.
type Pusher interface {
	Push(address, message string) int
}

// Coordinator turns invite requests into invitation and notification rows
// and pushes the notification to the invitee's live sessions.
type Coordinator struct {
	DB            *sql.DB
	Members       membership.Store
	Notifications *notification.Store
	Router        Pusher
	Log           *logger.Logger
	now           func() time.Time
}

func NewCoordinator(db *sql.DB, members membership.Store, notifications *notification.Store, router Pusher, log *logger.Logger) *Coordinator {
	return &Coordinator{
		DB:            db,
		Members:       members,
		Notifications: notifications,
		Router:        router,
		Log:           log,
		now:           time.Now,
	}
}

// InviteMessage is the notification text sent to an invitee.
func InviteMessage(projectID int64) string {
	return fmt.Sprintf("You have been invited to project %d", projectID)
}

// AcceptedMessage is the notification text sent to the inviter.
func AcceptedMessage(inviteeName string, projectID int64) string {
	return fmt.Sprintf("%s accepted your invitation to project %d", inviteeName, projectID)
}

// Invite records a pending invitation for inviteeEmail and notifies them.
//
// The invitation and notification rows are committed together. The push
// that follows never affects the result.
func (c *Coordinator) Invite(ctx context.Context, projectID, inviterID int64, inviteeEmail string) (inv models.Invitation, err error) {
	defer func() { countResult("invite", err) }()

	inviteeEmail = models.NormalizeEmail(inviteeEmail)
	if projectID == 0 || inviteeEmail == "" {
		return models.Invitation{}, apperr.New(apperr.CodeValidation, "projectId and userEmail are required")
	}
	log := c.Log.WithUser(inviterID)

	if _, err := c.Members.GetProject(ctx, projectID); err != nil {
		return models.Invitation{}, err
	}
	role, err := c.Members.MemberRole(ctx, projectID, inviterID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Warn("Invite attempt by non-member", "project_id", projectID)
			return models.Invitation{}, apperr.New(apperr.CodeForbidden, "you are not a member of this project")
		}
		return models.Invitation{}, err
	}
	if !role.CanInvite() {
		log.Warn("Invite attempt without privilege", "project_id", projectID, "role", role)
		return models.Invitation{}, apperr.New(apperr.CodeForbidden, "your role cannot invite members")
	}

	invitee, err := c.Members.FindUserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.Invitation{}, apperr.New(apperr.CodeNotFound, "no user with that email")
		}
		return models.Invitation{}, err
	}
	if _, err := c.Members.MemberRole(ctx, projectID, invitee.UserID); err == nil {
		return models.Invitation{}, apperr.New(apperr.CodeConflict, "user is already a member of this project")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return models.Invitation{}, err
	}

	inv = models.Invitation{
		ProjectID:    projectID,
		InviteeEmail: inviteeEmail,
		InviterID:    inviterID,
		Status:       models.InvitationPending,
		CreatedAt:    c.now().UTC().Unix(),
	}
	message := InviteMessage(projectID)

	err = database.WithTx(ctx, c.DB, func(tx *sql.Tx) error {
		query := `INSERT INTO invitations (project_id, invitee_email, inviter_id, status, pending_key, created_at) VALUES (?, ?, ?, ?, 1, ?)`
		result, err := tx.ExecContext(ctx, query, inv.ProjectID, inv.InviteeEmail, inv.InviterID, string(inv.Status), inv.CreatedAt)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Wrap(apperr.CodeConflict, "an invitation is already pending for this user", err)
			}
			return fmt.Errorf("insert invitation: %w", err)
		}
		if inv.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("invitation id: %w", err)
		}

		if _, err := c.Notifications.Record(ctx, tx, inviteeEmail, inviterID, message); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			log.Info("Duplicate invitation rejected", "project_id", projectID, "invitee", inviteeEmail)
			return models.Invitation{}, err
		}
		log.Error("Failed to record invitation", "project_id", projectID, "error", err)
		return models.Invitation{}, internalOr(err, "error sending invite")
	}

	log.Audit("Invitation created", "invitation_id", inv.ID, "project_id", projectID, "invitee", inviteeEmail)

	delivered := c.Router.Push(inviteeEmail, message)
	log.Info("Invitation notification pushed", "invitation_id", inv.ID, "sessions", delivered)

	return inv, nil
}

// Accept resolves a pending invitation addressed to userID and adds them to
// the project as a Member.
func (c *Coordinator) Accept(ctx context.Context, invitationID, userID int64) (inv models.Invitation, err error) {
	defer func() { countResult("accept", err) }()

	user, inv, err := c.loadForInvitee(ctx, invitationID, userID)
	if err != nil {
		return models.Invitation{}, err
	}

	resolvedAt := c.now().UTC().Unix()
	message := AcceptedMessage(user.Name, inv.ProjectID)

	var inviterEmail string
	err = database.WithTx(ctx, c.DB, func(tx *sql.Tx) error {
		if err := c.resolve(ctx, tx, inv.ID, models.InvitationAccepted, resolvedAt); err != nil {
			return err
		}
		if err := c.Members.AddMember(ctx, tx, inv.ProjectID, userID, models.RoleMember); err != nil {
			return err
		}

		err := tx.QueryRowContext(ctx, `SELECT email FROM users WHERE user_id = ?`, inv.InviterID).Scan(&inviterEmail)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load inviter: %w", err)
		}
		_, err = c.Notifications.Record(ctx, tx, inviterEmail, userID, message)
		return err
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return models.Invitation{}, err
		}
		c.Log.Error("Failed to accept invitation", "invitation_id", invitationID, "user_id", userID, "error", err)
		return models.Invitation{}, internalOr(err, "error accepting invitation")
	}

	inv.Status = models.InvitationAccepted
	inv.ResolvedAt = resolvedAt
	c.Log.Audit("Invitation accepted", "invitation_id", inv.ID, "project_id", inv.ProjectID, "user_id", userID)

	if inviterEmail != "" {
		c.Router.Push(inviterEmail, message)
	}
	return inv, nil
}

// Decline resolves a pending invitation addressed to userID without
// granting membership.
func (c *Coordinator) Decline(ctx context.Context, invitationID, userID int64) (inv models.Invitation, err error) {
	defer func() { countResult("decline", err) }()

	_, inv, err = c.loadForInvitee(ctx, invitationID, userID)
	if err != nil {
		return models.Invitation{}, err
	}

	resolvedAt := c.now().UTC().Unix()
	if err := c.resolve(ctx, c.DB, inv.ID, models.InvitationDeclined, resolvedAt); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return models.Invitation{}, err
		}
		return models.Invitation{}, internalOr(err, "error declining invitation")
	}

	inv.Status = models.InvitationDeclined
	inv.ResolvedAt = resolvedAt
	c.Log.Audit("Invitation declined", "invitation_id", inv.ID, "project_id", inv.ProjectID, "user_id", userID)
	return inv, nil
}

// ListPending returns the pending invitations addressed to email.
func (c *Coordinator) ListPending(ctx context.Context, email string) ([]models.Invitation, error) {
	query := `SELECT invitation_id, project_id, invitee_email, inviter_id, status, created_at, resolved_at
		FROM invitations WHERE invitee_email = ? AND status = ? ORDER BY created_at DESC, invitation_id DESC`
	rows, err := c.DB.QueryContext(ctx, query, models.NormalizeEmail(email), string(models.InvitationPending))
	if err != nil {
		return nil, apperr.Internal("failed to list invitations", err)
	}
	defer rows.Close()

	invitations := []models.Invitation{}
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(&inv.ID, &inv.ProjectID, &inv.InviteeEmail, &inv.InviterID, &inv.Status, &inv.CreatedAt, &inv.ResolvedAt); err != nil {
			return nil, apperr.Internal("failed to read invitations", err)
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("failed to read invitations", err)
	}
	return invitations, nil
}

func (c *Coordinator) get(ctx context.Context, invitationID int64) (models.Invitation, error) {
	var inv models.Invitation
	query := `SELECT invitation_id, project_id, invitee_email, inviter_id, status, created_at, resolved_at
		FROM invitations WHERE invitation_id = ?`
	err := c.DB.QueryRowContext(ctx, query, invitationID).Scan(
		&inv.ID, &inv.ProjectID, &inv.InviteeEmail, &inv.InviterID, &inv.Status, &inv.CreatedAt, &inv.ResolvedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Invitation{}, apperr.New(apperr.CodeNotFound, "invitation not found")
	}
	if err != nil {
		return models.Invitation{}, apperr.Internal("error fetching invitation", err)
	}
	return inv, nil
}

// loadForInvitee checks that the invitation exists, is addressed to userID
// and is still pending.
func (c *Coordinator) loadForInvitee(ctx context.Context, invitationID, userID int64) (models.User, models.Invitation, error) {
	inv, err := c.get(ctx, invitationID)
	if err != nil {
		return models.User{}, models.Invitation{}, err
	}
	user, err := c.Members.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.User{}, models.Invitation{}, apperr.New(apperr.CodeForbidden, "invitation is addressed to another user")
		}
		return models.User{}, models.Invitation{}, err
	}
	if user.Email != inv.InviteeEmail {
		c.Log.Warn("Invitation resolution by another user", "invitation_id", invitationID, "user_id", userID)
		return models.User{}, models.Invitation{}, apperr.New(apperr.CodeForbidden, "invitation is addressed to another user")
	}
	if inv.Status != models.InvitationPending {
		return models.User{}, models.Invitation{}, apperr.New(apperr.CodeConflict, "invitation is already "+string(inv.Status))
	}
	return user, inv, nil
}

// resolve moves a pending invitation to status. Losing a race against
// another resolution is reported as CodeConflict.
func (c *Coordinator) resolve(ctx context.Context, exec database.Executor, invitationID int64, status models.InvitationStatus, resolvedAt int64) error {
	query := `UPDATE invitations SET status = ?, pending_key = NULL, resolved_at = ? WHERE invitation_id = ? AND status = ?`
	result, err := exec.ExecContext(ctx, query, string(status), resolvedAt, invitationID, string(models.InvitationPending))
	if err != nil {
		return fmt.Errorf("update invitation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update invitation: %w", err)
	}
	if n == 0 {
		return apperr.New(apperr.CodeConflict, "invitation is no longer pending")
	}
	return nil
}

// internalOr keeps coded errors and wraps everything else as internal.
func internalOr(err error, message string) error {
	var coded *apperr.Error
	if errors.As(err, &coded) {
		return err
	}
	return apperr.Internal(message, err)
}

func countResult(op string, err error) {
	code := "OK"
	if err != nil {
		code = string(apperr.CodeOf(err))
	}
	metrics.Invitations.WithLabelValues(op, code).Inc()
}
