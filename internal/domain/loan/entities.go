package loan

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", validationError(fmt.Sprintf("invalid status %q", s))
	}
	return st, nil
}

type PaymentStatus string

const (
	PaymentNotStarted PaymentStatus = "not_started"
	PaymentActive     PaymentStatus = "active"
	PaymentPartial    PaymentStatus = "partial"
	PaymentCompleted  PaymentStatus = "completed"
)

type Loan struct {
	ID                   uint64          `gorm:"primaryKey;column:id"`
	LoanID               string          `gorm:"column:loan_id;size:32;uniqueIndex:ux_loans_loan_id"`
	ApplicantID          string          `gorm:"column:applicant_id;size:64;index:idx_loans_applicant"`
	ApplicantName        string          `gorm:"column:applicant_name;size:255"`
	ApplicantEmail       string          `gorm:"column:applicant_email;size:255"`
	Amount               decimal.Decimal `gorm:"column:amount;type:decimal(18,2)"`
	Purpose              string          `gorm:"column:purpose;type:text"`
	BusinessName         *string         `gorm:"column:business_name;size:255"`
	BusinessRegistration *string         `gorm:"column:business_registration;size:255"`
	Status               Status          `gorm:"column:status;type:enum('pending','approved','rejected');default:'pending'"`
	PaymentStatus        PaymentStatus   `gorm:"column:payment_status;type:enum('not_started','active','partial','completed');default:'not_started'"`
	SubmittedAt          time.Time       `gorm:"column:submitted_at"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime:false"`
	Repayments           []Repayment     `gorm:"foreignKey:LoanRefID;references:ID"`
}

func (Loan) TableName() string { return "loans" }

// Repayment is one scheduled installment of an approved loan.
type Repayment struct {
	ID          uint64          `gorm:"primaryKey;column:id"`
	RepaymentID string          `gorm:"column:repayment_id;size:32;uniqueIndex:ux_repayments_repayment_id"`
	LoanRefID   uint64          `gorm:"column:loan_ref_id;index:idx_repayments_loan"`
	Installment int             `gorm:"column:installment"`
	DueDate     time.Time       `gorm:"column:due_date"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(18,2)"`
	Paid        bool            `gorm:"column:paid"`
	PaidAt      *time.Time      `gorm:"column:paid_at"`
}

func (Repayment) TableName() string { return "repayments" }

// Clone returns a deep copy; the repayment slice and pointer fields are not shared.
func (l *Loan) Clone() *Loan {
	if l == nil {
		return nil
	}
	out := *l
	out.BusinessName = cloneString(l.BusinessName)
	out.BusinessRegistration = cloneString(l.BusinessRegistration)
	if l.Repayments != nil {
		out.Repayments = make([]Repayment, len(l.Repayments))
		for i, r := range l.Repayments {
			if r.PaidAt != nil {
				at := *r.PaidAt
				r.PaidAt = &at
			}
			out.Repayments[i] = r
		}
	}
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
