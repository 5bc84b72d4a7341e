package model

import (
	"strconv"
	"time"
)

type UserID int64 // assigned by the user database, never reused

func (id UserID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Permission string

const (
	PermissionAdminPanel Permission = "panel-admin"
)

type CreateUserParams struct {
	Name     string
	Password string
	Remember bool
}

// Profile holds the free-text fields a user may edit on their own profile.
type Profile struct {
	FullName   string `db:"FullName" json:"fullName" form:"nombre_completo" validate:"omitempty,profileinfo"`
	Location   string `db:"Location" json:"location" form:"ubicacion" validate:"omitempty,profileinfo"`
	Occupation string `db:"Occupation" json:"occupation" form:"ocupacion" validate:"omitempty,profileinfo"`
}

type User struct {
	ID           UserID     `db:"ID" json:"id"`
	CreatedAt    time.Time  `db:"CreatedAt" json:"createdAt"`
	UpdatedAt    *time.Time `db:"UpdatedAt" json:"updatedAt"`
	Name         string     `db:"Name" json:"name"`
	Salt         string     `db:"Salt" json:"salt"`
	PasswordHash string     `db:"PasswordHash" json:"passwordHash"`
	Remember     bool       `db:"Remember" json:"remember"`
	Role         Role       `db:"Role" json:"role"`
	Profile
}

// Can reports whether the user holds the given permission. Unknown
// permissions are never granted.
func (u *User) Can(permission Permission) bool {
	switch permission {
	case PermissionAdminPanel:
		return u.Role == RoleAdmin
	default:
		return false
	}
}
