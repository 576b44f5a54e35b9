package user

import "context"

type Repository interface {
	// Create returns ErrEmailTaken when the email is already stored.
	Create(ctx context.Context, u *User) error
	// Lookups return ErrNotFound when nothing matches. Emails are stored lower-cased.
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUserID(ctx context.Context, userID string) (*User, error)
	// Registration order.
	List(ctx context.Context) ([]User, error)
}
