package reminder

import (
	"context"
	"time"

	"flendly-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type OverdueDTO struct {
	LoanID         string          `json:"loan_id"`
	ApplicantID    string          `json:"applicant_id"`
	ApplicantName  string          `json:"applicant_name"`
	ApplicantEmail string          `json:"applicant_email"`
	RepaymentID    string          `json:"repayment_id"`
	Installment    int             `json:"installment"`
	DueDate        time.Time       `json:"due_date"`
	Amount         decimal.Decimal `json:"amount"`
	DaysOverdue    int             `json:"days_overdue"`
}

// Usecase reports unpaid installments past their due date. It never
// changes loan state.
type Usecase struct {
	loans loan.Repository
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewUsecase(loans loan.Repository, log logrus.FieldLogger, now func() time.Time) *Usecase {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Usecase{loans: loans, log: log, now: now}
}

// Overdue lists unpaid installments of approved loans due before asOf,
// ordered by loan then installment.
func (u *Usecase) Overdue(ctx context.Context, asOf time.Time) ([]OverdueDTO, error) {
	ls, err := u.loans.List(ctx)
	if err != nil {
		return nil, err
	}

	out := []OverdueDTO{}
	for _, l := range ls {
		if l.Status != loan.StatusApproved {
			continue
		}
		for _, r := range l.Repayments {
			if r.Paid || !r.DueDate.Before(asOf) {
				continue
			}
			out = append(out, OverdueDTO{
				LoanID:         l.LoanID,
				ApplicantID:    l.ApplicantID,
				ApplicantName:  l.ApplicantName,
				ApplicantEmail: l.ApplicantEmail,
				RepaymentID:    r.RepaymentID,
				Installment:    r.Installment,
				DueDate:        r.DueDate,
				Amount:         r.Amount,
				DaysOverdue:    int(asOf.Sub(r.DueDate).Hours() / 24),
			})
		}
	}
	return out, nil
}

// Run logs one reminder line per overdue installment and returns how many
// were found.
func (u *Usecase) Run(ctx context.Context) (int, error) {
	items, err := u.Overdue(ctx, u.now())
	if err != nil {
		u.log.WithError(err).Error("overdue scan failed")
		return 0, err
	}
	for _, it := range items {
		u.log.WithFields(logrus.Fields{
			"loan_id":         it.LoanID,
			"repayment_id":    it.RepaymentID,
			"applicant_email": it.ApplicantEmail,
			"installment":     it.Installment,
			"amount":          it.Amount.String(),
			"days_overdue":    it.DaysOverdue,
		}).Warn("repayment overdue")
	}
	u.log.WithField("count", len(items)).Info("overdue scan finished")
	return len(items), nil
}
