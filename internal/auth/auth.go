package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sundowners/taskhub/internal/db"
	"github.com/sundowners/taskhub/internal/model"
)

const sessionCookie = "taskhub_session"

type ctxKey struct{}

// Token returns the bearer token of r, falling back to the session cookie.
func Token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func CurrentUser(r *http.Request) *model.User {
	if u, ok := r.Context().Value(ctxKey{}).(*model.User); ok {
		return u
	}
	token := Token(r)
	if token == "" {
		return nil
	}
	user, err := db.GetUserBySession(token)
	if err != nil {
		return nil
	}
	return user
}

// Require rejects requests without a valid session and stores the user in
// the request context.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			deny(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after Require.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !CurrentUser(r).IsAdmin() {
			deny(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

func Logout(w http.ResponseWriter, r *http.Request) {
	if token := Token(r); token != "" {
		db.DeleteSession(token)
	}
	ClearSessionCookie(w)
}
