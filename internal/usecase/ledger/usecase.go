package ledger

import (
	"context"
	"time"

	"flendly-backend/internal/domain/loan"
	"flendly-backend/internal/domain/uow"
	"flendly-backend/internal/domain/user"
	"flendly-backend/pkg/id"

	"github.com/sirupsen/logrus"
)

// Ledger owns the loan records and applies every status and repayment
// transition. Mutations run inside a per-loan unit of work.
type Ledger struct {
	loans loan.Repository
	uow   uow.UnitOfWork
	log   logrus.FieldLogger
	now   func() time.Time
	newID func() string
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option { return func(l *Ledger) { l.now = now } }

func WithIDGenerator(gen func() string) Option { return func(l *Ledger) { l.newID = gen } }

func NewLedger(loans loan.Repository, tx uow.UnitOfWork, log logrus.FieldLogger, opts ...Option) *Ledger {
	l := &Ledger{
		loans: loans,
		uow:   tx,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: id.NewID32,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (lg *Ledger) Submit(ctx context.Context, caller user.Caller, in SubmitInput) (*LoanDTO, error) {
	l, err := loan.NewApplication(lg.newID(), caller.UserID, in.Amount, in.Purpose, in.BusinessName, in.BusinessRegistration, lg.now())
	if err != nil {
		return nil, err
	}
	l.ApplicantName = caller.Name
	l.ApplicantEmail = caller.Email

	if err := lg.loans.Create(ctx, l); err != nil {
		return nil, err
	}
	lg.log.WithFields(logrus.Fields{
		"loan_id":      l.LoanID,
		"applicant_id": l.ApplicantID,
		"amount":       l.Amount.String(),
	}).Info("loan application submitted")
	return toDTO(l), nil
}

func (lg *Ledger) SetStatus(ctx context.Context, loanID string, status string) (*LoanDTO, error) {
	s, err := loan.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var dto *LoanDTO
	err = lg.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		scheduled, err := l.ApplyStatus(s, lg.newID, lg.now())
		if err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		lg.log.WithFields(logrus.Fields{
			"loan_id":   l.LoanID,
			"status":    l.Status,
			"scheduled": scheduled,
		}).Info("loan status updated")
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// SetRepaymentPaid toggles one installment. Only the loan owner or an
// administrator may do it.
func (lg *Ledger) SetRepaymentPaid(ctx context.Context, caller user.Caller, loanID, repaymentID string, paid bool) (*LoanDTO, error) {
	var dto *LoanDTO
	err := lg.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if !l.OwnedBy(caller.UserID) && !caller.IsAdmin() {
			return loan.ErrForbidden
		}
		if err := l.MarkRepayment(repaymentID, paid, lg.now()); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		lg.log.WithFields(logrus.Fields{
			"loan_id":        l.LoanID,
			"repayment_id":   repaymentID,
			"paid":           paid,
			"payment_status": l.PaymentStatus,
		}).Info("repayment updated")
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (lg *Ledger) Get(ctx context.Context, caller user.Caller, loanID string) (*LoanDTO, error) {
	l, err := lg.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !l.OwnedBy(caller.UserID) && !caller.IsAdmin() {
		return nil, loan.ErrForbidden
	}
	return toDTO(l), nil
}

func (lg *Ledger) ListByApplicant(ctx context.Context, applicantID string) ([]LoanDTO, error) {
	ls, err := lg.loans.ListByApplicantID(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	return toDTOs(ls), nil
}

func (lg *Ledger) ListAll(ctx context.Context, caller user.Caller) ([]LoanDTO, error) {
	if !caller.IsAdmin() {
		return nil, loan.ErrForbidden
	}
	ls, err := lg.loans.List(ctx)
	if err != nil {
		return nil, err
	}
	return toDTOs(ls), nil
}
