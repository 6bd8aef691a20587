package app

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"barback-go/internal/db"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// MiddlewareLoadCurrentUser resolves the bearer token (when present) into the
// current user. Invalid tokens are ignored here; RequireAuth decides whether
// the request may proceed anonymously.
func (a *App) MiddlewareLoadCurrentUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			raw := strings.TrimPrefix(auth, "Bearer ")
			if uid, err := a.VerifyToken(raw); err == nil {
				u, err := a.store.Q.GetUserByID(uid)
				if err == nil && u != nil {
					ctx := context.WithValue(r.Context(), ctxKeyUser, u)
					r = r.WithContext(ctx)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) CurrentUser(r *http.Request) *db.User {
	u, _ := r.Context().Value(ctxKeyUser).(*db.User)
	return u
}

func (a *App) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.CurrentUser(r) == nil {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := a.CurrentUser(r)
			if u == nil {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if u.Role != role {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *App) RequireAnyRole(roles ...string) func(http.Handler) http.Handler {
	set := map[string]bool{}
	for _, r := range roles {
		set[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := a.CurrentUser(r)
			if u == nil {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !set[u.Role] {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
