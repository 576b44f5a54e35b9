package http

import (
	"flendly-backend/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
)

type Routes struct {
	Health *Handler
	Auth   *AuthHandler
	Loans  *LoanHandler
	Tokens middleware.TokenValidator
	// Idempotency wraps mutating loan routes; nil disables it.
	Idempotency echo.MiddlewareFunc
}

func Register(e *echo.Echo, r Routes) {
	e.GET("/health", r.Health.Health)

	api := e.Group("/api")
	api.POST("/register", r.Auth.Register)
	api.POST("/login", r.Auth.Login)

	authed := api.Group("", middleware.Auth(r.Tokens))
	authed.GET("/users", r.Auth.ListUsers, middleware.AdminOnly)

	loans := authed.Group("/loans")
	if r.Idempotency != nil {
		loans.Use(r.Idempotency)
	}
	loans.POST("", r.Loans.Submit)
	loans.GET("", r.Loans.ListAll, middleware.AdminOnly)
	loans.GET("/my", r.Loans.ListMine)
	loans.GET("/overdue", r.Loans.Overdue, middleware.AdminOnly)
	loans.GET("/:loan_id", r.Loans.Get)
	loans.PATCH("/:loan_id/status", r.Loans.SetStatus, middleware.AdminOnly)
	loans.PATCH("/:loan_id/repayments/:repayment_id", r.Loans.SetRepayment)
}
