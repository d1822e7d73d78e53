package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// roleGrants is the explicit role partial order: the set of role-gated
// capabilities each role satisfies. ADMIN satisfies every gate; the table is
// built once so call sites never re-derive the hierarchy.
var roleGrants = func() map[UserRole]map[UserRole]struct{} {
	grants := map[UserRole][]UserRole{
		RoleAdmin:   {RoleAdmin, RoleTeacher, RoleStudent},
		RoleTeacher: {RoleTeacher},
		RoleStudent: {RoleStudent},
	}
	table := make(map[UserRole]map[UserRole]struct{}, len(grants))
	for role, satisfied := range grants {
		set := make(map[UserRole]struct{}, len(satisfied))
		for _, s := range satisfied {
			set[s] = struct{}{}
		}
		table[role] = set
	}
	return table
}()

// Satisfies reports whether the role passes a gate requiring the given role.
func (r UserRole) Satisfies(required UserRole) bool {
	set, ok := roleGrants[r]
	if !ok {
		return false
	}
	_, ok = set[required]
	return ok
}

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	_, ok := roleGrants[r]
	return ok
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
