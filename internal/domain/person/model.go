package person

import (
	"strings"
	"time"
)

// Person is a user profile. Projects, memberships and task assignments all
// reference a person by ID.
type Person struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the full name, or the email when no name is set.
func (p *Person) DisplayName() string {
	if p.FullName != nil {
		if name := strings.TrimSpace(*p.FullName); name != "" {
			return name
		}
	}
	return p.Email
}

// Invite is a pending invitation for an email that has no profile yet.
// A nil ProjectID invites to every project the inviter owns.
type Invite struct {
	Email     string    `json:"email"`
	InvitedBy string    `json:"invited_by"`
	ProjectID *string   `json:"project_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
