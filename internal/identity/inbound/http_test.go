package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/libris/internal/identity/usecase"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"github.com/shandysiswandi/libris/internal/pkg/jwt"
	"github.com/shandysiswandi/libris/internal/pkg/router"
	"github.com/shandysiswandi/libris/internal/pkg/uid"
)

type fakeJWT struct{}

func (fakeJWT) Generate(int64, string, string) (string, error) { return "", nil }

func (fakeJWT) Verify(token string) (jwt.Claims, error) {
	if token != "good" {
		return jwt.Claims{}, jwt.ErrInvalidToken
	}
	return jwt.Claims{UserID: 7}, nil
}

type fakeUC struct {
	uc
	loginIn  usecase.LoginInput
	loginErr error
	verifyIn usecase.LoginVerifyInput
	profile  *usecase.ProfileOutput
}

func (f *fakeUC) Login(_ context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error) {
	f.loginIn = in
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &usecase.LoginOutput{OTPSent: true, ExpiresInSeconds: 300}, nil
}

func (f *fakeUC) LoginVerify(_ context.Context, in usecase.LoginVerifyInput) (*usecase.LoginVerifyOutput, error) {
	f.verifyIn = in
	return &usecase.LoginVerifyOutput{AccessToken: "at", RefreshToken: "rt"}, nil
}

func (f *fakeUC) Profile(ctx context.Context) (*usecase.ProfileOutput, error) {
	if jwt.GetAuth(ctx) == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}
	return f.profile, nil
}

func serve(t *testing.T, f *fakeUC, method, path, body, token string) (int, map[string]any) {
	t.Helper()

	r := router.NewRouter(router.Config{UUID: uid.NewUUID(), JWT: fakeJWT{}, Instrument: instrument.NewNoop()})
	RegisterHTTPEndpoint(r, f)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestHTTPEndpoint_Login(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := &fakeUC{}

		// Act
		code, body := serve(t, f, http.MethodPost, "/api/v1/identity/login", `{"username":"alice","password":"pw"}`, "")

		// Assert
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, usecase.LoginInput{Username: "alice", Password: "pw"}, f.loginIn)
		assert.Equal(t, map[string]any{"otp_sent": true, "expires_in_seconds": float64(300)}, body["data"])
	})

	t.Run("DeliveryFailed", func(t *testing.T) {
		f := &fakeUC{loginErr: goerror.NewUnavailable(errors.New("smtp.internal:587 refused"), "failed to deliver otp code, please request a new one")}

		code, body := serve(t, f, http.MethodPost, "/api/v1/identity/login", `{"username":"alice","password":"pw"}`, "")

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "failed to deliver otp code, please request a new one", body["message"])
		assert.NotContains(t, body, "error")
	})
}

func TestHTTPEndpoint_LoginVerify(t *testing.T) {
	f := &fakeUC{}

	code, body := serve(t, f, http.MethodPost, "/api/v1/identity/login/otp", `{"username":"alice","code":"012345"}`, "")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "012345", f.verifyIn.Code)
	assert.Equal(t, map[string]any{"access_token": "at", "refresh_token": "rt"}, body["data"])
}

func TestHTTPEndpoint_Profile(t *testing.T) {
	f := &fakeUC{profile: &usecase.ProfileOutput{ID: 7, Username: "alice", Status: "Active"}}

	code, _ := serve(t, f, http.MethodGet, "/api/v1/identity/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := serve(t, f, http.MethodGet, "/api/v1/identity/profile", "", "good")
	assert.Equal(t, http.StatusOK, code)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "7", data["id"])
	assert.Equal(t, "alice", data["username"])
}
