package domain

// Role is the actor role used by the workflow table.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleFinance  Role = "FINANCE"
	RoleAdmin    Role = "ADMIN"
)

var validRoles = map[Role]bool{
	RoleEmployee: true,
	RoleManager:  true,
	RoleFinance:  true,
	RoleAdmin:    true,
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r Role) String() string {
	return string(r)
}

// User is a person acting on advances. Identity is asserted by the token issuer.
type User struct {
	UserID string `json:"userID"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Dept   string `json:"dept,omitempty"`
}

// Actor is the authenticated caller of a lifecycle operation.
type Actor struct {
	UserID string
	Role   Role
}

// SystemActorID identifies scheduled jobs in audit entries.
const SystemActorID = "system"
