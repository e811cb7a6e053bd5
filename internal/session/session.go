// Package session holds the process's authentication state: the bearer
// token and the current user id.
//
// There is exactly one Session per process, but it is injected, not a
// package global; it mutates only through Login and Logout, and
// everything else treats it as read-only. In particular a 401 from the
// gateway does not clear it; that surfaces as an ordinary gateway
// error and the user decides whether to log in again.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is safe for concurrent readers against the two writers.
type Session struct {
	mu     sync.RWMutex
	token  string
	userID int
}

// New returns a logged-out session.
func New() *Session { return &Session{} }

// Login installs the token and user id from a completed OAuth exchange.
func (s *Session) Login(token string, userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.userID = userID
}

// Logout clears the session.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.userID = 0
}

// Token returns the current bearer token, empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserID returns the current user id, zero when logged out.
func (s *Session) UserID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Authenticated reports whether a login has happened.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Expired reads the token's exp claim without verifying the signature
// (the gateway verifies; this is only for deciding whether to prompt a
// re-login). No token means expired; a token whose claims cannot be
// read is treated as live and left for the gateway to reject.
func (s *Session) Expired(now time.Time) bool {
	token := s.Token()
	if token == "" {
		return true
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}
