package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/libris/internal/pkg/config"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"github.com/shandysiswandi/libris/internal/pkg/jwt"
	"github.com/shandysiswandi/libris/internal/pkg/uid"
)

type fakeJWT struct{}

func (fakeJWT) Generate(int64, string, string) (string, error) { return "", nil }

func (fakeJWT) Verify(token string) (jwt.Claims, error) {
	if token != "good" {
		return jwt.Claims{}, jwt.ErrInvalidToken
	}
	return jwt.Claims{UserID: 7, Username: "alice"}, nil
}

func newTestRouter(t *testing.T, cfg config.Config) *Router {
	t.Helper()
	return NewRouter(Config{
		Config:     cfg,
		UUID:       uid.NewUUID(),
		JWT:        fakeJWT{},
		Instrument: instrument.NewNoop(),
		MaskFields: []string{"password"},
	})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_PublicAndProtected(t *testing.T) {
	// Arrange
	r := newTestRouter(t, nil)
	r.GET("/api/v1/library/books", func(req *Request) (any, error) {
		if clm := jwt.GetAuth(req.Context()); clm != nil {
			return map[string]any{"user": clm.Username}, nil
		}
		return map[string]any{"user": nil}, nil
	})
	r.GET("/api/v1/identity/profile", func(req *Request) (any, error) {
		return map[string]any{"id": jwt.GetAuth(req.Context()).UserID}, nil
	})

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{name: "public without token", path: "/api/v1/library/books", status: http.StatusOK},
		{name: "public with bad token", path: "/api/v1/library/books", token: "bad", status: http.StatusOK},
		{name: "protected without token", path: "/api/v1/identity/profile", status: http.StatusUnauthorized},
		{name: "protected with bad token", path: "/api/v1/identity/profile", token: "bad", status: http.StatusUnauthorized},
		{name: "protected with token", path: "/api/v1/identity/profile", token: "good", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			// Act
			r.ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(HeaderCorrelationID))
		})
	}
}

func TestRouter_PublicRouteKeepsClaims(t *testing.T) {
	r := newTestRouter(t, nil)
	r.GET("/api/v1/library/books", func(req *Request) (any, error) {
		return map[string]any{"user": jwt.GetAuth(req.Context()).Username}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/library/books", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"user": "alice"}, decode(t, rec)["data"])
}

func TestRouter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "business", err: goerror.NewBusiness("invalid or expired otp code", goerror.CodeUnauthorized), status: http.StatusUnauthorized, message: "invalid or expired otp code"},
		{name: "unavailable hides cause", err: goerror.NewUnavailable(errors.New("smtp 535 secret"), "failed to deliver otp code, please request a new one"), status: http.StatusServiceUnavailable, message: "failed to deliver otp code, please request a new one"},
		{name: "untyped", err: errors.New("boom"), status: http.StatusInternalServerError, message: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			r := newTestRouter(t, nil)
			r.POST("/api/v1/identity/login", func(*Request) (any, error) { return nil, tt.err })

			// Act
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/identity/login", strings.NewReader(`{}`)))

			// Assert
			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.message, body["message"])
			assert.NotContains(t, rec.Body.String(), "secret")
		})
	}
}

type pageResp struct {
	Items []int `json:"items"`
}

func (pageResp) Meta() map[string]any { return map[string]any{"total": 12, "size": 5, "page": 1} }
func (pageResp) StatusCode() int      { return http.StatusCreated }

func TestRouter_SuccessEnvelope(t *testing.T) {
	r := newTestRouter(t, nil)
	r.GET("/api/v1/library/authors", func(*Request) (any, error) { return pageResp{Items: []int{1}}, nil })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/library/authors", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, map[string]any{"total": float64(12), "size": float64(5), "page": float64(1)}, body["meta"])
	assert.Equal(t, map[string]any{"items": []any{float64(1)}}, body["data"])
}

func TestRouter_Maintenance(t *testing.T) {
	// Arrange
	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  maintenance:\n    endpoints: [\"/api/v1/library/books\"]\n"))
	require.NoError(t, err)
	r := newTestRouter(t, cfg)
	r.GET("/api/v1/library/books", func(*Request) (any, error) { return map[string]any{}, nil })
	r.GET("/api/v1/library/authors", func(*Request) (any, error) { return map[string]any{}, nil })

	// Act
	blocked := httptest.NewRecorder()
	r.ServeHTTP(blocked, httptest.NewRequest(http.MethodGet, "/api/v1/library/books", nil))
	open := httptest.NewRecorder()
	r.ServeHTTP(open, httptest.NewRequest(http.MethodGet, "/api/v1/library/authors", nil))

	// Assert
	assert.Equal(t, http.StatusServiceUnavailable, blocked.Code)
	assert.Equal(t, http.StatusOK, open.Code)
}

func TestRouter_RecoversPanic(t *testing.T) {
	r := newTestRouter(t, nil)
	r.GET("/api/v1/library/books", func(*Request) (any, error) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/library/books", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouter_CorrelationIDPassthrough(t *testing.T) {
	r := newTestRouter(t, nil)
	var seen string
	r.GET("/api/v1/library/books", func(req *Request) (any, error) {
		seen = instrument.GetCorrelationID(req.Context())
		return map[string]any{}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/library/books", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", rec.Header().Get(HeaderCorrelationID))
}

func TestIncomingCorrelationID(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "Empty", want: ""},
		{name: "PrefersCorrelationHeader", headers: map[string]string{HeaderCorrelationID: "cid-1", HeaderRequestID: "rid-1"}, want: "cid-1"},
		{name: "FallsBackToRequestID", headers: map[string]string{HeaderCorrelationID: "bad id", HeaderRequestID: "rid-1"}, want: "rid-1"},
		{name: "Trimmed", headers: map[string]string{HeaderCorrelationID: "  cid-2  "}, want: "cid-2"},
		{name: "Truncated", headers: map[string]string{HeaderCorrelationID: strings.Repeat("a", 200)}, want: strings.Repeat("a", 128)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, incomingCorrelationID(req))
		})
	}
}

func TestRequest_Queries(t *testing.T) {
	req := &Request{Request: httptest.NewRequest(http.MethodGet, "/x?page=2&size=abc&book_id=99", nil)}

	page, err := req.GetQueryInt("page")
	require.NoError(t, err)
	assert.Equal(t, 2, page)

	_, err = req.GetQueryInt("size")
	assert.Error(t, err)

	missing, err := req.GetQueryInt("missing")
	require.NoError(t, err)
	assert.Zero(t, missing)

	id, err := req.GetQueryInt64("book_id")
	require.NoError(t, err)
	assert.Equal(t, int64(99), id)
}

func TestRequest_DecodeBody(t *testing.T) {
	var dst struct {
		Username string `json:"username"`
	}

	ok := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"alice"}`))}
	require.NoError(t, ok.DecodeBody(&dst))
	assert.Equal(t, "alice", dst.Username)

	unknown := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"a","x":1}`))}
	assert.Error(t, unknown.DecodeBody(&dst))

	trailing := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"a"}{}`))}
	assert.Error(t, trailing.DecodeBody(&dst))
}
