package mysql

import (
	"fmt"
	"strings"
	"testing"
	"time"

	loanDomain "flendly-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- SQLite-friendly schema only for tests (no ENUM) ---

type loanSQLite struct {
	ID                   uint64          `gorm:"primaryKey;column:id"`
	LoanID               string          `gorm:"size:32;column:loan_id;uniqueIndex"`
	ApplicantID          string          `gorm:"size:64;column:applicant_id;index"`
	ApplicantName        string          `gorm:"column:applicant_name"`
	ApplicantEmail       string          `gorm:"column:applicant_email"`
	Amount               decimal.Decimal `gorm:"type:numeric;column:amount"`
	Purpose              string          `gorm:"type:text;column:purpose"`
	BusinessName         *string         `gorm:"column:business_name"`
	BusinessRegistration *string         `gorm:"column:business_registration"`
	Status               string          `gorm:"type:text;column:status"`         // ← no enum
	PaymentStatus        string          `gorm:"type:text;column:payment_status"` // ← no enum
	SubmittedAt          time.Time       `gorm:"column:submitted_at"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (loanSQLite) TableName() string { return "loans" }

type userSQLite struct {
	ID           uint64    `gorm:"primaryKey;column:id"`
	UserID       string    `gorm:"size:64;column:user_id;uniqueIndex"`
	Name         string    `gorm:"column:name"`
	Email        string    `gorm:"column:email;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"type:text;column:role"`
	RegisteredAt time.Time `gorm:"column:registered_at"`
}

func (userSQLite) TableName() string { return "users" }

// openTestDB creates a per-test in-memory sqlite DB and migrates ONLY the sqlite-safe schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&loanSQLite{}, &loanDomain.Repayment{}, &userSQLite{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
