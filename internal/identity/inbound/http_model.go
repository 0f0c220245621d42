package inbound

import (
	"net/http"
	"time"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	ID       int64  `json:"id,string"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (RegisterResponse) Message() string {
	return "Registration successful. You can now log in."
}

func (RegisterResponse) StatusCode() int {
	return http.StatusCreated
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	OTPSent          bool  `json:"otp_sent"`
	ExpiresInSeconds int64 `json:"expires_in_seconds"`
}

func (LoginResponse) Message() string {
	return "An OTP code has been sent to your email."
}

type LoginVerifyRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type OTPResendRequest struct {
	Username string `json:"username"`
}

type OTPResendResponse struct {
	ExpiresInSeconds int64 `json:"expires_in_seconds"`
}

func (OTPResendResponse) Message() string {
	return "If the account exists, a new OTP code has been sent to its email."
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutResponse struct{}

func (LogoutResponse) Message() string {
	return "Logged out."
}

type ProfileResponse struct {
	ID        int64     `json:"id,string"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type PasswordChangeResponse struct{}

func (PasswordChangeResponse) Message() string {
	return "Password changed. Please log in again on your other devices."
}
