package models

// Role is a member's role inside a project.
type Role string

const (
	RoleOwner  Role = "Owner"
	RoleMember Role = "Member"
)

// CanInvite reports whether a member holding r may invite others.
func (r Role) CanInvite() bool {
	return r == RoleOwner || r == RoleMember
}

// Project represents a project entity
type Project struct {
	ID          int64  `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     int64  `json:"owner_id"`
	CreatedAt   int64  `json:"created_at"`
}

// Member is a project membership joined with the member's user record.
type Member struct {
	ProjectID int64  `json:"project_id"`
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	JoinedAt  int64  `json:"joined_at"`
}
