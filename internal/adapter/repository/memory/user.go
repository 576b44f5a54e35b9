package memory

import (
	"context"
	"strings"
	"sync"

	userDomain "flendly-backend/internal/domain/user"
)

type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]userDomain.User // key: UserID
	byEmail map[string]string          // key: lower-cased email -> UserID
	order   []string
	seq     uint64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]userDomain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(ctx context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, exists := r.byEmail[email]; exists {
		return userDomain.ErrEmailTaken
	}
	r.seq++
	u.ID = r.seq
	u.Email = email

	r.users[u.UserID] = *u
	r.byEmail[email] = u.UserID
	r.order = append(r.order, u.UserID)
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, userDomain.ErrNotFound
	}
	u := r.users[userID]
	return &u, nil
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*userDomain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, userDomain.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]userDomain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]userDomain.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.users[id])
	}
	return out, nil
}
