package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"

	httpadp "flendly-backend/internal/adapter/http"
	mw "flendly-backend/internal/adapter/middleware"
	"flendly-backend/internal/adapter/repository/memory"
	"flendly-backend/internal/adapter/repository/mysql"
	"flendly-backend/internal/config"
	"flendly-backend/internal/domain/loan"
	"flendly-backend/internal/domain/uow"
	"flendly-backend/internal/domain/user"
	"flendly-backend/internal/infrastructure/cache"
	"flendly-backend/internal/infrastructure/db"
	"flendly-backend/internal/infrastructure/logging"
	"flendly-backend/internal/infrastructure/scheduler"
	"flendly-backend/internal/usecase/auth"
	"flendly-backend/internal/usecase/ledger"
	"flendly-backend/internal/usecase/reminder"
	"flendly-backend/pkg/token"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

type stores struct {
	loans loan.Repository
	users user.Repository
	tx    uow.UnitOfWork
	close func()
}

func openStores(cfg *config.Config, log *logrus.Logger) (*stores, error) {
	if cfg.StoreDriver != config.DriverMySQL {
		loans, users := memory.NewLoanRepository(), memory.NewUserRepository()
		return &stores{loans: loans, users: users, tx: memory.NewUoW(loans, users), close: func() {}}, nil
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), db.WithLogWriter(log, logger.Warn))
	if err != nil {
		return nil, err
	}
	if err := mysql.AutoMigrate(gdb); err != nil {
		return nil, err
	}
	log.Info("gorm: connected")
	return &stores{
		loans: mysql.NewLoanRepository(gdb),
		users: mysql.NewUserRepository(gdb),
		tx:    mysql.NewGormUoW(gdb),
		close: func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}

type adminSeeder interface {
	SeedAdmin(ctx context.Context, name, email, pass string) error
}

// seedAdmin creates the configured admin. Without ADMIN_EMAIL no account
// can reach the admin routes, so say so at startup.
func seedAdmin(ctx context.Context, cfg *config.Config, s adminSeeder, log logrus.FieldLogger) error {
	if cfg.AdminEmail == "" {
		log.Warn("ADMIN_EMAIL is not set: no admin account seeded, admin routes will answer 403")
		return nil
	}
	return s.SeedAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
}

func run(cfg *config.Config, log *logrus.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	// amounts go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authUC := auth.NewUsecase(st.users, st.tx, issuer, log)
	ledgerUC := ledger.NewLedger(st.loans, st.tx, log)
	reminderUC := reminder.NewUsecase(st.loans, log, nil)

	if err := seedAdmin(ctx, cfg, authUC, log); err != nil {
		return err
	}

	var idem echo.MiddlewareFunc
	if cfg.IdempotencyEnabled() {
		rdb, err := cache.OpenRedis(ctx, cache.RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		idem = mw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log)
		log.WithField("addr", cfg.RedisAddr).Info("idempotency enabled")
	}

	if cfg.ReminderEnabled {
		sch := scheduler.New(log, time.Minute)
		if err := sch.Add("overdue-reminder", cfg.ReminderCron, func(ctx context.Context) error {
			_, err := reminderUC.Run(ctx)
			return err
		}); err != nil {
			return err
		}
		sch.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			sch.Stop(stopCtx)
		}()
		log.WithField("cron", cfg.ReminderCron).Info("overdue reminders scheduled")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	httpadp.Register(e, httpadp.Routes{
		Health:      httpadp.NewHandler(cfg.StoreDriver),
		Auth:        httpadp.NewAuthHandler(authUC, log),
		Loans:       httpadp.NewLoanHandler(ledgerUC, reminderUC, log),
		Tokens:      issuer,
		Idempotency: idem,
	})

	errc := make(chan error, 1)
	go func() {
		addr := ":" + cfg.AppPort
		log.WithFields(logrus.Fields{"addr": addr, "store": cfg.StoreDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
