package models

import "github.com/fixadd/stok/pkg/roles"

type User struct {
	ID                 int    `json:"id" db:"id"`
	Username           string `json:"username" db:"username"`
	FirstName          string `json:"first_name" db:"first_name"`
	LastName           string `json:"last_name" db:"last_name"`
	Email              string `json:"email" db:"email"`
	PasswordHash       string `json:"-" db:"password_hash"`
	Role               string `json:"role" db:"role"`
	Department         string `json:"department" db:"department"`
	MustChangePassword bool   `json:"must_change_password" db:"must_change_password"`
	Theme              string `json:"theme" db:"theme"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsSuperAdmin() bool {
	return roles.Role(u.Role) == roles.SuperAdmin
}

func (u *User) CreateLogView() ActivityLog {
	return ActivityLog{
		ResourceID: u.ID,
		Area:       "kullanici",
	}
}

// Actor is the authenticated identity performing an operation. The HTTP
// layer resolves it from JWT claims and passes it into every core call; the
// core never reads ambient session state.
type Actor struct {
	ID       int
	Username string
	Role     roles.Role
}

func (a Actor) HasPermission(required roles.Role) bool {
	return a.Role.HasPermission(required)
}

type CreateUserRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type UpdateUserRequest struct {
	Password           *string `json:"password"`
	Role               *string `json:"role"`
	Department         *string `json:"department"`
	Theme              *string `json:"theme"`
	MustChangePassword *bool   `json:"must_change_password"`
}

type UserChanges struct {
	PasswordHash       *string
	Role               *string
	Department         *string
	Theme              *string
	MustChangePassword *bool
}

func (c *UserChanges) HasChanges() bool {
	return c.PasswordHash != nil || c.Role != nil || c.Department != nil ||
		c.Theme != nil || c.MustChangePassword != nil
}
