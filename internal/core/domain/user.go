package domain

import "time"

const (
	RoleUser  = "user"
	RoleStaff = "staff"
)

// User models an account that owns job applications.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the authenticated caller as established by the auth middleware.
type Identity struct {
	UserID   int64
	Username string
	Role     string
}

func (i Identity) IsStaff() bool {
	return i.Role == RoleStaff
}
