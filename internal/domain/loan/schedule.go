package loan

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentCount is the fixed number of repayments generated on approval.
const InstallmentCount = 3

// GenerateSchedule splits amount into InstallmentCount monthly installments
// due one, two, ... months after from. Every installment but the last gets
// floor(amount/N); the last absorbs the remainder so the sum equals amount.
func GenerateSchedule(amount decimal.Decimal, from time.Time, newID func() string) []Repayment {
	n := decimal.NewFromInt(InstallmentCount)
	base := amount.Div(n).Floor()
	last := amount.Sub(base.Mul(decimal.NewFromInt(InstallmentCount - 1)))

	out := make([]Repayment, 0, InstallmentCount)
	for i := 1; i <= InstallmentCount; i++ {
		amt := base
		if i == InstallmentCount {
			amt = last
		}
		out = append(out, Repayment{
			RepaymentID: newID(),
			Installment: i,
			DueDate:     from.AddDate(0, i, 0),
			Amount:      amt,
		})
	}
	return out
}

// DerivePaymentStatus summarises repayment progress. A loan without a
// schedule is not_started whatever its approval status.
func DerivePaymentStatus(rs []Repayment) PaymentStatus {
	if len(rs) == 0 {
		return PaymentNotStarted
	}
	paid := 0
	for _, r := range rs {
		if r.Paid {
			paid++
		}
	}
	switch {
	case paid == 0:
		return PaymentActive
	case paid == len(rs):
		return PaymentCompleted
	default:
		return PaymentPartial
	}
}

// ScheduleTotal sums the installment amounts.
func ScheduleTotal(rs []Repayment) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rs {
		total = total.Add(r.Amount)
	}
	return total
}

// NewApplication builds a pending loan after checking the submit rules.
func NewApplication(loanID, applicantID string, amount decimal.Decimal, purpose string, businessName, businessRegistration string, at time.Time) (*Loan, error) {
	if applicantID == "" {
		return nil, validationError("applicant is required")
	}
	if !amount.IsPositive() {
		return nil, validationError("amount must be a positive number")
	}
	if !amount.Equal(amount.Truncate(2)) {
		return nil, validationError("amount must have at most 2 decimal places")
	}
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return nil, validationError("purpose is required")
	}
	return &Loan{
		LoanID:               loanID,
		ApplicantID:          applicantID,
		Amount:               amount,
		Purpose:              purpose,
		BusinessName:         optional(businessName),
		BusinessRegistration: optional(businessRegistration),
		Status:               StatusPending,
		PaymentStatus:        PaymentNotStarted,
		SubmittedAt:          at,
		UpdatedAt:            at,
		Repayments:           []Repayment{},
	}, nil
}

// ApplyStatus moves the loan to s. The first transition to approved
// generates the schedule; it is never regenerated or cleared afterwards.
// It reports whether a schedule was generated by this call.
func (l *Loan) ApplyStatus(s Status, newID func() string, at time.Time) (bool, error) {
	if _, err := ParseStatus(string(s)); err != nil {
		return false, err
	}
	l.Status = s
	l.UpdatedAt = at

	scheduled := false
	if s == StatusApproved && len(l.Repayments) == 0 {
		l.Repayments = GenerateSchedule(l.Amount, l.SubmittedAt, newID)
		scheduled = true
	}
	l.PaymentStatus = DerivePaymentStatus(l.Repayments)
	return scheduled, nil
}

// MarkRepayment sets the paid flag of one installment and refreshes the
// payment status. paidAt is set on true and cleared on false.
func (l *Loan) MarkRepayment(repaymentID string, paid bool, at time.Time) error {
	idx := -1
	for i := range l.Repayments {
		if l.Repayments[i].RepaymentID == repaymentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrRepaymentNotFound
	}

	r := &l.Repayments[idx]
	r.Paid = paid
	if paid {
		t := at
		r.PaidAt = &t
	} else {
		r.PaidAt = nil
	}
	l.UpdatedAt = at
	l.PaymentStatus = DerivePaymentStatus(l.Repayments)
	return nil
}

// OwnedBy reports whether applicantID submitted the loan.
func (l *Loan) OwnedBy(applicantID string) bool {
	return applicantID != "" && l.ApplicantID == applicantID
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
