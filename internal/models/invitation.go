package models

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation is an offer of project membership addressed to a user's email.
type Invitation struct {
	ID           int64            `json:"invitation_id"`
	ProjectID    int64            `json:"project_id"`
	InviteeEmail string           `json:"invitee_email"`
	InviterID    int64            `json:"inviter_id"`
	Status       InvitationStatus `json:"status"`
	CreatedAt    int64            `json:"created_at"`
	ResolvedAt   int64            `json:"resolved_at,omitempty"`
}
