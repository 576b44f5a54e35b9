package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"flendly-backend/internal/domain/uow"
	"flendly-backend/internal/domain/user"
	"flendly-backend/pkg/id"
	"flendly-backend/pkg/password"

	"github.com/sirupsen/logrus"
)

// TokenIssuer signs access tokens; *token.Issuer satisfies it.
type TokenIssuer interface {
	Issue(userID, email, name, role string) (string, error)
}

type Usecase struct {
	users  user.Repository
	tx     uow.UnitOfWork
	tokens TokenIssuer
	log    logrus.FieldLogger
	cost   int
	now    func() time.Time
	newID  func() string
}

type Option func(*Usecase)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option { return func(u *Usecase) { u.cost = cost } }

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func WithIDGenerator(gen func() string) Option { return func(u *Usecase) { u.newID = gen } }

// NewUsecase reads through users; writes go through tx so the email
// check and the insert share one transaction.
func NewUsecase(users user.Repository, tx uow.UnitOfWork, tokens TokenIssuer, log logrus.FieldLogger, opts ...Option) *Usecase {
	u := &Usecase{
		users:  users,
		tx:     tx,
		tokens: tokens,
		log:    log,
		cost:   password.DefaultCost,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  id.NewID32,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Register creates an applicant account. Self-registration never grants admin.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*UserDTO, error) {
	created, err := u.newUser(in, user.RoleApplicant)
	if err != nil {
		return nil, err
	}
	if err := u.tx.WithinTx(ctx, func(r uow.Repos) error {
		return r.Users.Create(ctx, created)
	}); err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"user_id": created.UserID, "role": created.Role}).Info("user registered")
	dto := toDTO(created)
	return &dto, nil
}

func (u *Usecase) Login(ctx context.Context, email, pass string) (*LoginResult, error) {
	found, err := u.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, user.ErrNotFound) {
		return nil, user.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !password.Verify(pass, found.PasswordHash) {
		return nil, user.ErrInvalidCredentials
	}

	tok, err := u.tokens.Issue(found.UserID, found.Email, found.Name, string(found.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: tok, User: toDTO(found)}, nil
}

func (u *Usecase) ListUsers(ctx context.Context, caller user.Caller) ([]UserDTO, error) {
	if !caller.IsAdmin() {
		return nil, user.ErrForbidden
	}
	us, err := u.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserDTO, 0, len(us))
	for i := range us {
		out = append(out, toDTO(&us[i]))
	}
	return out, nil
}

// SeedAdmin makes sure an administrator with email exists. An existing
// account with that email is left as it is.
func (u *Usecase) SeedAdmin(ctx context.Context, name, email, pass string) error {
	admin, err := u.newUser(RegisterInput{Name: name, Email: email, Password: pass}, user.RoleAdmin)
	if err != nil {
		return err
	}

	seeded := false
	err = u.tx.WithinTx(ctx, func(r uow.Repos) error {
		existing, err := r.Users.GetByEmail(ctx, admin.Email)
		switch {
		case err == nil:
			if existing.Role != user.RoleAdmin {
				u.log.WithField("user_id", existing.UserID).Warn("seed admin email belongs to a non-admin account")
			}
			return nil
		case !errors.Is(err, user.ErrNotFound):
			return err
		}
		seeded = true
		return r.Users.Create(ctx, admin)
	})
	if err != nil {
		return err
	}
	if seeded {
		u.log.WithField("user_id", admin.UserID).Info("admin account seeded")
	}
	return nil
}

// newUser validates in and hashes the password; it does not store anything.
func (u *Usecase) newUser(in RegisterInput, role user.Role) (*user.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case name == "":
		return nil, user.ValidationError("name is required")
	case email == "":
		return nil, user.ValidationError("email is required")
	case !strings.Contains(email, "@"):
		return nil, user.ValidationError("email is invalid")
	case !password.Valid(in.Password):
		return nil, user.ValidationError("password must be at least 6 characters")
	}

	hash, err := password.Hash(in.Password, u.cost)
	if err != nil {
		return nil, err
	}
	return &user.User{
		UserID:       u.newID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		RegisteredAt: u.now(),
	}, nil
}
