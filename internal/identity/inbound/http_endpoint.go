package inbound

import (
	"github.com/shandysiswandi/libris/internal/identity/usecase"
	"github.com/shandysiswandi/libris/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for authentication and profile workflows.
type HTTPEndpoint struct {
	uc uc
}

// Register creates a new user account.
// @Summary Register user
// @Description Creates an active account with the member role.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration payload"
// @Success 201 {object} router.successResponse{data=RegisterResponse} "Registered account"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Username or email already registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{ID: resp.ID, Username: resp.Username, Email: resp.Email}, nil
}

// Login checks the credentials and emails a one-time code.
// @Summary Authenticate user (first factor)
// @Description Validates username and password, then sends a 6 digit code to the account email.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 503 {object} router.errorResponse "Code could not be delivered"
// @Router /api/v1/identity/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{OTPSent: resp.OTPSent, ExpiresInSeconds: resp.ExpiresInSeconds}, nil
}

// LoginVerify exchanges a one-time code for tokens.
// @Summary Authenticate user (second factor)
// @Description Consumes the emailed code and returns access/refresh tokens.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body LoginVerifyRequest true "OTP payload"
// @Success 200 {object} router.successResponse{data=TokenResponse} "Authentication result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/identity/login/otp [post]
func (h *HTTPEndpoint) LoginVerify(r *router.Request) (any, error) {
	var req LoginVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.LoginVerify(r.Context(), usecase.LoginVerifyInput{
		Username: req.Username,
		Code:     req.Code,
	})
	if err != nil {
		return nil, err
	}

	return TokenResponse{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, nil
}

// OTPResend emails another one-time code.
// @Summary Resend login code
// @Description Sends a new code to the account email. The response does not reveal whether the account exists.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body OTPResendRequest true "Resend payload"
// @Success 200 {object} router.successResponse{data=OTPResendResponse} "Request accepted"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 503 {object} router.errorResponse "Code could not be delivered"
// @Router /api/v1/identity/login/otp/resend [post]
func (h *HTTPEndpoint) OTPResend(r *router.Request) (any, error) {
	var req OTPResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.OTPResend(r.Context(), usecase.OTPResendInput{Username: req.Username})
	if err != nil {
		return nil, err
	}

	return OTPResendResponse{ExpiresInSeconds: resp.ExpiresInSeconds}, nil
}

// RefreshToken issues a new access token using a refresh token.
// @Summary Refresh access token
// @Description Exchanges a refresh token for a new access/refresh token pair.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token payload"
// @Success 200 {object} router.successResponse{data=TokenResponse} "Token refresh result"
// @Failure 401 {object} router.errorResponse "Invalid refresh token"
// @Failure 403 {object} router.errorResponse "Token reuse detected"
// @Router /api/v1/identity/refresh [post]
func (h *HTTPEndpoint) RefreshToken(r *router.Request) (any, error) {
	var req RefreshTokenRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RefreshToken(r.Context(), usecase.RefreshTokenInput{RefreshToken: req.RefreshToken})
	if err != nil {
		return nil, err
	}

	return TokenResponse{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, nil
}

// Logout revokes a refresh token.
// @Summary Logout
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LogoutRequest true "Logout payload"
// @Success 200 {object} router.successResponse "Logged out"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Router /api/v1/identity/logout [post]
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	var req LogoutRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Logout(r.Context(), usecase.LogoutInput{RefreshToken: req.RefreshToken}); err != nil {
		return nil, err
	}

	return LogoutResponse{}, nil
}

// LogoutAll revokes every refresh token of the caller.
// @Summary Logout from all devices
// @Tags Identity, Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse "Logged out"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Router /api/v1/identity/logout-all [post]
func (h *HTTPEndpoint) LogoutAll(r *router.Request) (any, error) {
	if err := h.uc.LogoutAll(r.Context()); err != nil {
		return nil, err
	}

	return LogoutResponse{}, nil
}

// Profile returns the authenticated user.
// @Summary Current user profile
// @Tags Identity, Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=ProfileResponse} "Profile"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Router /api/v1/identity/profile [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		ID:        resp.ID,
		Username:  resp.Username,
		Email:     resp.Email,
		FullName:  resp.FullName,
		Status:    resp.Status,
		CreatedAt: resp.CreatedAt,
	}, nil
}

// ProfilePermissions lists what the authenticated user may do.
// @Summary Current user permissions
// @Tags Identity, Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=map[string][]string} "Permissions by object"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Router /api/v1/identity/profile/permissions [get]
func (h *HTTPEndpoint) ProfilePermissions(r *router.Request) (any, error) {
	return h.uc.ProfilePermissions(r.Context())
}

// PasswordChange replaces the password of the authenticated user.
// @Summary Change password
// @Tags Identity, Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PasswordChangeRequest true "Password payload"
// @Success 200 {object} router.successResponse "Password changed"
// @Failure 401 {object} router.errorResponse "Wrong current password"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/identity/profile/password [put]
func (h *HTTPEndpoint) PasswordChange(r *router.Request) (any, error) {
	var req PasswordChangeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordChange(r.Context(), usecase.PasswordChangeInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return PasswordChangeResponse{}, nil
}
