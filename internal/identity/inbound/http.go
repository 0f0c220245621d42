package inbound

import (
	"context"

	"github.com/shandysiswandi/libris/internal/identity/usecase"
	"github.com/shandysiswandi/libris/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)

	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	LoginVerify(ctx context.Context, in usecase.LoginVerifyInput) (*usecase.LoginVerifyOutput, error)
	OTPResend(ctx context.Context, in usecase.OTPResendInput) (*usecase.OTPResendOutput, error)
	RefreshToken(ctx context.Context, in usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error)

	Logout(ctx context.Context, in usecase.LogoutInput) error
	LogoutAll(ctx context.Context) error

	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
	ProfilePermissions(ctx context.Context) (map[string][]string, error)
	PasswordChange(ctx context.Context, in usecase.PasswordChangeInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Authentication
	r.POST("/api/v1/identity/register", end.Register)
	r.POST("/api/v1/identity/login", end.Login)
	r.POST("/api/v1/identity/login/otp", end.LoginVerify)
	r.POST("/api/v1/identity/login/otp/resend", end.OTPResend)
	r.POST("/api/v1/identity/refresh", end.RefreshToken)
	//
	r.POST("/api/v1/identity/logout", end.Logout)        // need authenticated
	r.POST("/api/v1/identity/logout-all", end.LogoutAll) // need authenticated

	// User Profile (need authenticated)
	r.GET("/api/v1/identity/profile", end.Profile)
	r.GET("/api/v1/identity/profile/permissions", end.ProfilePermissions)
	r.PUT("/api/v1/identity/profile/password", end.PasswordChange)
}
