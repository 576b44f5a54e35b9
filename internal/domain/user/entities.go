package user

import (
	"errors"
	"fmt"
	"time"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleApplicant Role = "applicant"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("admin access required")
)

func ValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Table: users
type User struct {
	ID           uint64    `gorm:"primaryKey;column:id"`
	UserID       string    `gorm:"column:user_id;size:64;uniqueIndex:ux_users_user_id"`
	Name         string    `gorm:"column:name;size:255;not null"`
	Email        string    `gorm:"column:email;size:255;not null;uniqueIndex:ux_users_email"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null"`
	Role         Role      `gorm:"column:role;type:enum('admin','applicant');default:'applicant'"`
	RegisteredAt time.Time `gorm:"column:registered_at"`
}

func (User) TableName() string { return "users" }

// Caller is the authenticated identity attached to a request.
type Caller struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }
