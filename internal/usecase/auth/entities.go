package auth

import (
	"time"

	"flendly-backend/internal/domain/user"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type UserDTO struct {
	UserID       string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}

type LoginResult struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

func toDTO(u *user.User) UserDTO {
	return UserDTO{
		UserID:       u.UserID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		RegisteredAt: u.RegisteredAt,
	}
}
