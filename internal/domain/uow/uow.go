package uow

import (
	"context"

	"flendly-backend/internal/domain/loan"
	"flendly-backend/internal/domain/user"
)

type Repos struct {
	Loans loan.Repository
	Users user.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the loan first, then pass it in; returns loan.ErrLoanNotFound without calling fn
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
