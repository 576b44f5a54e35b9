package memory

import (
	"context"
	"fmt"
	"sync"

	loanDomain "flendly-backend/internal/domain/loan"
)

// LoanRepository keeps loans in process memory. Values are copied on the
// way in and out so callers never alias stored state.
type LoanRepository struct {
	mu          sync.RWMutex
	loans       map[string]*loanDomain.Loan
	order       []string
	byApplicant map[string][]string
	loanSeq     uint64
	repaySeq    uint64
}

func NewLoanRepository() *LoanRepository {
	return &LoanRepository{
		loans:       make(map[string]*loanDomain.Loan),
		byApplicant: make(map[string][]string),
	}
}

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.loans[l.LoanID]; exists {
		return fmt.Errorf("loan %s already exists", l.LoanID)
	}
	r.loanSeq++
	l.ID = r.loanSeq
	r.assignRepaymentIDs(l)

	r.loans[l.LoanID] = l.Clone()
	r.order = append(r.order, l.LoanID)
	r.byApplicant[l.ApplicantID] = append(r.byApplicant[l.ApplicantID], l.LoanID)
	return nil
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.loans[l.LoanID]
	if !ok {
		return loanDomain.ErrLoanNotFound
	}
	l.ID = cur.ID
	r.assignRepaymentIDs(l)
	r.loans[l.LoanID] = l.Clone()
	return nil
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.loans[loanID]
	if !ok {
		return nil, loanDomain.ErrLoanNotFound
	}
	return l.Clone(), nil
}

// GetByLoanIDForUpdate is a plain read; UoW serialises writers.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	return r.GetByLoanID(ctx, loanID)
}

func (r *LoanRepository) ListByApplicantID(ctx context.Context, applicantID string) ([]loanDomain.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(r.byApplicant[applicantID]), nil
}

func (r *LoanRepository) List(ctx context.Context) ([]loanDomain.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(r.order), nil
}

func (r *LoanRepository) collect(ids []string) []loanDomain.Loan {
	out := make([]loanDomain.Loan, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.loans[id].Clone())
	}
	return out
}

// caller holds r.mu
func (r *LoanRepository) assignRepaymentIDs(l *loanDomain.Loan) {
	for i := range l.Repayments {
		if l.Repayments[i].ID == 0 {
			r.repaySeq++
			l.Repayments[i].ID = r.repaySeq
		}
		l.Repayments[i].LoanRefID = l.ID
	}
}
