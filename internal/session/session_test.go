package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	// The signature never gets verified; any key works.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestSessionTransitions(t *testing.T) {
	s := New()
	if s.Authenticated() {
		t.Fatal("fresh session must be logged out")
	}

	s.Login("tok", 42)
	if !s.Authenticated() || s.Token() != "tok" || s.UserID() != 42 {
		t.Fatalf("after login: token=%q user=%d", s.Token(), s.UserID())
	}

	s.Logout()
	if s.Authenticated() || s.Token() != "" || s.UserID() != 0 {
		t.Fatal("logout must clear everything")
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no token", func(t *testing.T) {
		if !New().Expired(now) {
			t.Fatal("logged-out session reads expired")
		}
	})

	t.Run("future exp", func(t *testing.T) {
		s := New()
		s.Login(signedToken(t, jwt.MapClaims{"sub": "42", "exp": now.Add(time.Hour).Unix()}), 42)
		if s.Expired(now) {
			t.Fatal("token with a future exp is live")
		}
	})

	t.Run("past exp", func(t *testing.T) {
		s := New()
		s.Login(signedToken(t, jwt.MapClaims{"sub": "42", "exp": now.Add(-time.Hour).Unix()}), 42)
		if !s.Expired(now) {
			t.Fatal("token with a past exp is expired")
		}
	})

	t.Run("opaque token left for the gateway", func(t *testing.T) {
		s := New()
		s.Login("not-a-jwt", 42)
		if s.Expired(now) {
			t.Fatal("unreadable token is treated as live")
		}
	})

	t.Run("no exp claim", func(t *testing.T) {
		s := New()
		s.Login(signedToken(t, jwt.MapClaims{"sub": "42"}), 42)
		if s.Expired(now) {
			t.Fatal("token without exp is treated as live")
		}
	})
}
