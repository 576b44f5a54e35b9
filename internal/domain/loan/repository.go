package loan

import "context"

// Repository returns ErrLoanNotFound when a loan id does not exist.
// Lists preserve insertion order.
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// locks the loan until the surrounding unit of work ends
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	ListByApplicantID(ctx context.Context, applicantID string) ([]Loan, error)
	List(ctx context.Context) ([]Loan, error)
}
