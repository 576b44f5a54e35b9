package mysql

import (
	"context"
	"errors"
	"strings"

	userDomain "flendly-backend/internal/domain/user"

	"gorm.io/gorm"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *userDomain.User) error {
	u.Email = strings.ToLower(u.Email)

	var n int64
	if err := r.db.WithContext(ctx).Model(&userDomain.User{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return userDomain.ErrEmailTaken
	}

	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return userDomain.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	return r.first(r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)))
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*userDomain.User, error) {
	return r.first(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *UserRepository) List(ctx context.Context) ([]userDomain.User, error) {
	out := []userDomain.User{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *UserRepository) first(q *gorm.DB) (*userDomain.User, error) {
	var out userDomain.User
	err := q.First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, userDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
