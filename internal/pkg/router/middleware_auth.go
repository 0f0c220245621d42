package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/libris/internal/pkg/jwt"
)

// middlewareAuthentication requires a bearer token on every route not marked
// public. Public routes still get the claims when a valid token is sent.
func middlewareAuthentication(verifier jwt.JWT, public *publicRoutes) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isPublic := public.has(r.Method, matchedRoutePath(r))

			token, hasToken := bearer(r)
			if !hasToken {
				if isPublic {
					next.ServeHTTP(w, r)
					return
				}
				writeJSON(w, errorResponse{Message: "authentication required"}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				if isPublic {
					next.ServeHTTP(w, r)
					return
				}
				writeJSON(w, errorResponse{Message: "invalid or expired token"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	p := strings.Fields(r.Header.Get("Authorization"))
	if len(p) != 2 || !strings.EqualFold(p[0], "Bearer") {
		return "", false
	}
	return p[1], true
}

type publicRoutes struct {
	routes map[string]map[string]struct{}
}

func (p *publicRoutes) add(method, path string) {
	if p.routes[method] == nil {
		p.routes[method] = make(map[string]struct{})
	}
	p.routes[method][path] = struct{}{}
}

func (p *publicRoutes) has(method, path string) bool {
	_, ok := p.routes[method][path]
	return ok
}
