package mysql

import (
	loanDomain "flendly-backend/internal/domain/loan"
	userDomain "flendly-backend/internal/domain/user"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the users, loans and repayments tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userDomain.User{}, &loanDomain.Loan{}, &loanDomain.Repayment{})
}
