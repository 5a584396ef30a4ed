package server

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// requireAuth guards mutating routes with the admin password. The hash
// lives in the settings file; an empty hash means the frame is open and
// every request passes. The password arrives as HTTP basic auth (any
// username) or an X-Admin-Password header.
func (s *WebServer) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hash := s.svc.Settings.Load().Web.PasswordHash
		if hash == "" {
			next.ServeHTTP(w, r)
			return
		}

		password := r.Header.Get("X-Admin-Password")
		if password == "" {
			if _, p, ok := r.BasicAuth(); ok {
				password = p
			}
		}
		if password == "" {
			w.Header().Set("WWW-Authenticate", `Basic realm="inkframe"`)
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
			writeError(w, http.StatusForbidden, "invalid password")
			return
		}
		next.ServeHTTP(w, r)
	})
}
