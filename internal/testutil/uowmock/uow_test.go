package uowmock

import (
	"context"
	"errors"
	"testing"

	"flendly-backend/internal/domain/loan"
	"flendly-backend/internal/domain/uow"
	"flendly-backend/internal/testutil/loanmock"
	"flendly-backend/internal/testutil/usermock"
)

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()

	loans := &loanmock.Repo{}
	users := &usermock.Repo{}
	repos := uow.Repos{Loans: loans, Users: users}

	innerCalled := false
	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			return fn(repos)
		},
	}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Loans != loans || r.Users != users {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_Default_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &UoW{}
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
	if err := m.WithinLoanTx(ctx, "LN-X", func(uow.Repos, *loan.Loan) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinLoanTx default: want errUnimplemented, got %v", err)
	}
}

func TestPassthrough_WithinLoanTx(t *testing.T) {
	ctx := context.Background()
	lock := &loan.Loan{ID: 7, LoanID: "LN-7"}
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(_ context.Context, loanID string) (*loan.Loan, error) {
			if loanID != "LN-7" {
				return nil, loan.ErrLoanNotFound
			}
			return lock, nil
		},
	}
	m := Passthrough(uow.Repos{Loans: loans})

	called := false
	if err := m.WithinLoanTx(ctx, "LN-7", func(r uow.Repos, l *loan.Loan) error {
		called = true
		if l != lock {
			t.Fatalf("loan not forwarded: %+v", l)
		}
		return nil
	}); err != nil {
		t.Fatalf("WithinLoanTx: %v", err)
	}
	if !called {
		t.Fatalf("inner fn not called")
	}

	err := m.WithinLoanTx(ctx, "LN-8", func(uow.Repos, *loan.Loan) error {
		t.Fatalf("callback must not run for a missing loan")
		return nil
	})
	if !errors.Is(err, loan.ErrLoanNotFound) {
		t.Fatalf("want ErrLoanNotFound, got %v", err)
	}
}

func TestUoW_FluentSetters_And_Reset(t *testing.T) {
	m := New()
	if m.WithinTxFn != nil || m.WithinLoanTxFn != nil {
		t.Fatalf("New should start with nil funcs")
	}

	m.WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil }).
		WithWithinLoanTx(func(context.Context, string, func(uow.Repos, *loan.Loan) error) error { return nil })

	if m.WithinTxFn == nil || m.WithinLoanTxFn == nil {
		t.Fatalf("fluent setters didn't assign funcs")
	}

	m.Reset()
	if m.WithinTxFn != nil || m.WithinLoanTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
