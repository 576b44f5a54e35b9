package mysql

import (
	"context"
	"errors"

	loanDomain "flendly-backend/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

// Save writes the loan row and then each repayment; new installments are
// inserted, existing ones updated in place.
func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	if l.ID == 0 {
		return loanDomain.ErrLoanNotFound
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(l).
			Select("*").
			Omit("id", clause.Associations).
			Updates(l).Error
		if err != nil {
			return err
		}
		for i := range l.Repayments {
			l.Repayments[i].LoanRefID = l.ID
			if err := tx.Save(&l.Repayments[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	return r.first(r.db.WithContext(ctx), loanID)
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), loanID)
}

func (r *LoanRepository) ListByApplicantID(ctx context.Context, applicantID string) ([]loanDomain.Loan, error) {
	out := []loanDomain.Loan{}
	err := withRepayments(r.db.WithContext(ctx)).
		Where("applicant_id = ?", applicantID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) List(ctx context.Context) ([]loanDomain.Loan, error) {
	out := []loanDomain.Loan{}
	err := withRepayments(r.db.WithContext(ctx)).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *LoanRepository) first(db *gorm.DB, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := withRepayments(db).Where("loan_id = ?", loanID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	if out.Repayments == nil {
		out.Repayments = []loanDomain.Repayment{}
	}
	return &out, nil
}

func withRepayments(db *gorm.DB) *gorm.DB {
	return db.Preload("Repayments", func(db *gorm.DB) *gorm.DB {
		return db.Order("installment ASC")
	})
}
