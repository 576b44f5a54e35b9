package http

import (
	"net/http"
	"time"

	"flendly-backend/internal/domain/loan"
	"flendly-backend/internal/usecase/ledger"
	"flendly-backend/internal/usecase/reminder"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type LoanHandler struct {
	ledger   *ledger.Ledger
	reminder *reminder.Usecase
	log      logrus.FieldLogger
}

func NewLoanHandler(lg *ledger.Ledger, rm *reminder.Usecase, log logrus.FieldLogger) *LoanHandler {
	return &LoanHandler{ledger: lg, reminder: rm, log: log}
}

type submitLoanReq struct {
	Amount               decimal.Decimal `json:"amount" validate:"gt=0,dec2"`
	Purpose              string          `json:"purpose" validate:"required,notblank"`
	BusinessName         string          `json:"business_name" validate:"max=255"`
	BusinessRegistration string          `json:"business_registration" validate:"max=255"`
}

type setStatusReq struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

type setRepaymentReq struct {
	Paid *bool `json:"paid" validate:"required"`
}

type loanResp struct {
	Message string          `json:"message"`
	Loan    *ledger.LoanDTO `json:"loan"`
}

func (h *LoanHandler) Submit(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	var req submitLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.ledger.Submit(c.Request().Context(), caller, ledger.SubmitInput{
		Amount:               req.Amount,
		Purpose:              req.Purpose,
		BusinessName:         req.BusinessName,
		BusinessRegistration: req.BusinessRegistration,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, loanResp{Message: "loan application submitted", Loan: dto})
}

func (h *LoanHandler) ListMine(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	dtos, err := h.ledger.ListByApplicant(c.Request().Context(), caller.UserID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

func (h *LoanHandler) ListAll(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	dtos, err := h.ledger.ListAll(c.Request().Context(), caller)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

func (h *LoanHandler) Get(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	loanID, err := idParam(c, "loan_id", loan.ErrLoanNotFound)
	if err != nil {
		return writeError(c, h.log, err)
	}
	dto, err := h.ledger.Get(c.Request().Context(), caller, loanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) SetStatus(c echo.Context) error {
	var req setStatusReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	loanID, err := idParam(c, "loan_id", loan.ErrLoanNotFound)
	if err != nil {
		return writeError(c, h.log, err)
	}
	dto, err := h.ledger.SetStatus(c.Request().Context(), loanID, req.Status)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, loanResp{Message: "loan status updated", Loan: dto})
}

func (h *LoanHandler) SetRepayment(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	var req setRepaymentReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	loanID, err := idParam(c, "loan_id", loan.ErrLoanNotFound)
	if err != nil {
		return writeError(c, h.log, err)
	}
	repaymentID, err := idParam(c, "repayment_id", loan.ErrRepaymentNotFound)
	if err != nil {
		return writeError(c, h.log, err)
	}
	dto, err := h.ledger.SetRepaymentPaid(c.Request().Context(), caller, loanID, repaymentID, *req.Paid)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, loanResp{Message: "repayment updated", Loan: dto})
}

// Overdue lists unpaid installments due before ?as_of (default now).
func (h *LoanHandler) Overdue(c echo.Context) error {
	asOf, err := parseAsOf(c.QueryParam("as_of"), time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "as_of must be RFC3339 or YYYY-MM-DD"})
	}
	items, err := h.reminder.Overdue(c.Request().Context(), asOf)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, items)
}
