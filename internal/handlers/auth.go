package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/floorwarden/warden/internal/services"
)

type ctxKey int

const principalKey ctxKey = iota

func principal(r *http.Request) services.Principal {
	p, _ := r.Context().Value(principalKey).(services.Principal)
	return p
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAuth resolves the bearer token into a Principal or answers 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearer(r)
		if tok == "" {
			writeDetail(w, http.StatusUnauthorized, "missing_token", "")
			return
		}
		p, err := services.Authenticate(tok)
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, *p)))
	})
}

func requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if principal(r).Role != role {
				writeDetail(w, http.StatusForbidden, "forbidden", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var (
	RequireLeader  = requireRole(services.RoleLeader)
	RequireStudent = requireRole(services.RoleStudent)
)

type loginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /token/
func Token(w http.ResponseWriter, r *http.Request) {
	var in loginForm
	if !decode(w, r, &in) {
		return
	}
	tok, err := services.Login(in.Username, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

type refreshForm struct {
	Refresh string `json:"refresh" validate:"required"`
}

// POST /token/refresh/
func TokenRefresh(w http.ResponseWriter, r *http.Request) {
	var in refreshForm
	if !decode(w, r, &in) {
		return
	}
	access, err := services.Refresh(in.Refresh)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}
