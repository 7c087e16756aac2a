package project

import "time"

// Role is the job a member plays in a project.
type Role string

const (
	RoleManager   Role = "manager"
	RoleDeveloper Role = "developer"
	RoleDesigner  Role = "designer"
	RoleTester    Role = "tester"
	RoleAnalyst   Role = "analyst"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleManager, RoleDeveloper, RoleDesigner, RoleTester, RoleAnalyst:
		return true
	}
	return false
}

// Project owns a hierarchy of objects and bounds their default dates.
type Project struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Members     []Member   `json:"members,omitempty"`
}

// Member links a user to a project.
type Member struct {
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	AddedAt   time.Time `json:"added_at"`
}

// ProjectSummary is a lightweight representation for listing
type ProjectSummary struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ObjectCount int       `json:"object_count"`
	OpenObjects int       `json:"open_objects"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// User is an authenticated principal.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
