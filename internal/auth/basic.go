// Package auth guards handlers with HTTP Basic Authentication.
package auth

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Credentials maps user names to passwords. A password starting with "$2" is
// treated as a bcrypt hash; anything else is compared verbatim.
type Credentials map[string]string

// ParseCredentials reads the "user:pass|user2:pass2" form.
func ParseCredentials(s string) (Credentials, error) {
	creds := make(Credentials)
	for _, pair := range strings.Split(s, "|") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		user, pass, ok := strings.Cut(pair, ":")
		if !ok || user == "" || pass == "" {
			return nil, fmt.Errorf("malformed credential entry %q", pair)
		}
		creds[user] = pass
	}
	return creds, nil
}

func (c Credentials) Valid(user, pass string) bool {
	want, ok := c[user]
	if !ok {
		return false
	}
	if strings.HasPrefix(want, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(want), []byte(pass)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(pass)) == 1
}

// BasicAuth challenges every request that lacks valid credentials. With no
// credentials configured every request is rejected.
func BasicAuth(creds Credentials, realm string, logger *slog.Logger, next http.Handler) http.Handler {
	challenge := fmt.Sprintf("Basic realm=%q, charset=\"UTF-8\"", realm)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || !creds.Valid(user, pass) {
			if ok {
				logger.Warn("basic auth rejected", "user", user, "path", r.URL.Path)
			}
			w.Header().Set("WWW-Authenticate", challenge)
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
