package models

import (
	"strings"
	"time"
)

// UserKind is decided by the server-supplied role field only.
type UserKind string

const (
	KindCustomer UserKind = "customer"
	KindAdmin    UserKind = "admin"
)

const RoleAdmin = "admin"

// User is the profile carried in the session.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Kind reports the tagged variant of the user. A missing or unknown role is a customer.
func (u User) Kind() UserKind {
	if strings.EqualFold(strings.TrimSpace(u.Role), RoleAdmin) {
		return KindAdmin
	}
	return KindCustomer
}

func (u User) IsAdmin() bool { return u.Kind() == KindAdmin }

// Credentials is the login form. Identifier may be an email or a username.
type Credentials struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type Registration struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password" validate:"required,min=6"`
}

type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// UserUpdate is the admin-side edit of another account.
type UserUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty"`
}
