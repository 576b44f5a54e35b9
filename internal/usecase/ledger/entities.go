package ledger

import (
	"time"

	"flendly-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type SubmitInput struct {
	Amount               decimal.Decimal
	Purpose              string
	BusinessName         string
	BusinessRegistration string
}

type RepaymentDTO struct {
	RepaymentID string          `json:"id"`
	Installment int             `json:"installment"`
	DueDate     time.Time       `json:"due_date"`
	Amount      decimal.Decimal `json:"amount"`
	Paid        bool            `json:"paid"`
	PaidAt      *time.Time      `json:"paid_at"`
}

type LoanDTO struct {
	LoanID               string          `json:"id"`
	ApplicantID          string          `json:"applicant_id"`
	ApplicantName        string          `json:"applicant_name"`
	ApplicantEmail       string          `json:"applicant_email"`
	Amount               decimal.Decimal `json:"amount"`
	Purpose              string          `json:"purpose"`
	BusinessName         *string         `json:"business_name"`
	BusinessRegistration *string         `json:"business_registration"`
	Status               string          `json:"status"`
	PaymentStatus        string          `json:"payment_status"`
	SubmittedAt          time.Time       `json:"submitted_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	Repayments           []RepaymentDTO  `json:"repayments"`
}

func toDTO(l *loan.Loan) *LoanDTO {
	dto := &LoanDTO{
		LoanID:               l.LoanID,
		ApplicantID:          l.ApplicantID,
		ApplicantName:        l.ApplicantName,
		ApplicantEmail:       l.ApplicantEmail,
		Amount:               l.Amount,
		Purpose:              l.Purpose,
		BusinessName:         l.BusinessName,
		BusinessRegistration: l.BusinessRegistration,
		Status:               string(l.Status),
		PaymentStatus:        string(l.PaymentStatus),
		SubmittedAt:          l.SubmittedAt,
		UpdatedAt:            l.UpdatedAt,
		Repayments:           make([]RepaymentDTO, 0, len(l.Repayments)),
	}
	for _, r := range l.Repayments {
		dto.Repayments = append(dto.Repayments, RepaymentDTO{
			RepaymentID: r.RepaymentID,
			Installment: r.Installment,
			DueDate:     r.DueDate,
			Amount:      r.Amount,
			Paid:        r.Paid,
			PaidAt:      r.PaidAt,
		})
	}
	return dto
}

func toDTOs(ls []loan.Loan) []LoanDTO {
	out := make([]LoanDTO, 0, len(ls))
	for i := range ls {
		out = append(out, *toDTO(&ls[i]))
	}
	return out
}
