package domain

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// Profile is the application-level user record, keyed by the auth
// provider's user id. The role is set at creation and never editable
// through any exposed operation.
type Profile struct {
	ID        string    `json:"id"` // auth provider user id
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
