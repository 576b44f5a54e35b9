package memory

import (
	"context"
	"sync"

	"flendly-backend/internal/domain/loan"
	"flendly-backend/internal/domain/uow"
)

// UoW serialises every unit of work behind one ledger-wide mutex.
// There is no rollback: writes made by fn stay applied if fn later fails.
type UoW struct {
	mu    sync.Mutex
	repos uow.Repos
}

func NewUoW(loans *LoanRepository, users *UserRepository) *UoW {
	return &UoW{repos: uow.Repos{Loans: loans, Users: users}}
}

func (u *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return fn(u.repos)
}

func (u *UoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	l, err := u.repos.Loans.GetByLoanIDForUpdate(ctx, loanID)
	if err != nil {
		return err
	}
	return fn(u.repos, l)
}
