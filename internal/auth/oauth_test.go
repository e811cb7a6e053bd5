package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func testFlow(t *testing.T, handler http.Handler) *Flow {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	f, err := NewFlow(Config{
		AuthURL:      srv.URL,
		ClientID:     "my-client-id",
		ClientSecret: "my-client-secret",
		CallbackAddr: "127.0.0.1:18573",
	})
	if err != nil {
		t.Fatalf("new flow: %v", err)
	}
	return f
}

func TestNewFlowValidation(t *testing.T) {
	if _, err := NewFlow(Config{ClientID: "x", ClientSecret: "y"}); err == nil {
		t.Fatal("expected error for missing AuthURL")
	}
	f, err := NewFlow(Config{AuthURL: "http://auth", ClientID: "x", ClientSecret: "y"})
	if err != nil {
		t.Fatalf("new flow: %v", err)
	}
	if f.cfg.CallbackAddr != "localhost:5556" {
		t.Fatalf("callback addr = %q, want default", f.cfg.CallbackAddr)
	}
}

func TestAuthorizeURL(t *testing.T) {
	f, err := NewFlow(Config{AuthURL: "http://auth:9000", ClientID: "my-client-id", ClientSecret: "s"})
	if err != nil {
		t.Fatalf("new flow: %v", err)
	}
	u, err := url.Parse(f.AuthorizeURL("state-1"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Path != "/oauth2/authorize" {
		t.Fatalf("path = %q", u.Path)
	}
	q := u.Query()
	if q.Get("response_type") != "code" || q.Get("client_id") != "my-client-id" || q.Get("state") != "state-1" {
		t.Fatalf("query = %v", q)
	}
	if got := q.Get("redirect_uri"); got != "http://localhost:5556/oauth/callback" {
		t.Fatalf("redirect_uri = %q", got)
	}
}

func TestExchange(t *testing.T) {
	f := testFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/token" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != "my-client-id" || pass != "my-client-secret" {
			t.Errorf("basic auth = %q/%q ok=%v", user, pass, ok)
		}
		q := r.URL.Query()
		if q.Get("grant_type") != "authorization_code" || q.Get("code") != "abc" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`{"access_token":"tok-xyz","token_type":"Bearer"}`))
	}))

	token, err := f.Exchange(context.Background(), "abc")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if token != "tok-xyz" {
		t.Fatalf("token = %q", token)
	}
}

func TestExchangeFailures(t *testing.T) {
	t.Run("missing access_token", func(t *testing.T) {
		f := testFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		if _, err := f.Exchange(context.Background(), "abc"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("error status carries body text", func(t *testing.T) {
		f := testFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("invalid_grant"))
		}))
		_, err := f.Exchange(context.Background(), "abc")
		if err == nil || !strings.Contains(err.Error(), "invalid_grant") {
			t.Fatalf("err = %v, want invalid_grant in message", err)
		}
	})
}

func TestIntrospect(t *testing.T) {
	f := testFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/introspect" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("token"); got != "tok-xyz" {
			t.Errorf("token = %q", got)
		}
		w.Write([]byte(`{"active":true,"sub":"42"}`))
	}))

	userID, err := f.Introspect(context.Background(), "tok-xyz")
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}
	if userID != 42 {
		t.Fatalf("user id = %d, want 42", userID)
	}
}

func TestIntrospectNonNumericSub(t *testing.T) {
	f := testFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sub":"alice"}`))
	}))
	if _, err := f.Introspect(context.Background(), "tok"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCallbackRouter(t *testing.T) {
	f, err := NewFlow(Config{AuthURL: "http://auth", ClientID: "c", ClientSecret: "s"})
	if err != nil {
		t.Fatalf("new flow: %v", err)
	}

	t.Run("state mismatch rejected", func(t *testing.T) {
		codeCh := make(chan string, 1)
		r := f.callbackRouter("good-state", codeCh)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/oauth/callback?state=evil&code=abc", nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("code = %d, want 400", w.Code)
		}
		if len(codeCh) != 0 {
			t.Fatal("code must not be delivered on state mismatch")
		}
	})

	t.Run("provider error surfaced", func(t *testing.T) {
		codeCh := make(chan string, 1)
		r := f.callbackRouter("s", codeCh)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/oauth/callback?error=access_denied", nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("code = %d, want 400", w.Code)
		}
	})

	t.Run("valid redirect delivers the code once", func(t *testing.T) {
		codeCh := make(chan string, 1)
		r := f.callbackRouter("s", codeCh)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/oauth/callback?state=s&code=abc", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200", w.Code)
		}
		if got := <-codeCh; got != "abc" {
			t.Fatalf("delivered code = %q", got)
		}

		// A replayed redirect loses.
		w = httptest.NewRecorder()
		codeCh <- "abc"
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/oauth/callback?state=s&code=again", nil))
		if w.Code != http.StatusConflict {
			t.Fatalf("replay code = %d, want 409", w.Code)
		}
	})
}

// TestLoginEndToEnd drives the whole dance: the prompt callback plays
// the browser and hits the local callback server with the state from
// the authorize URL.
func TestLoginEndToEnd(t *testing.T) {
	f := testFlow(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/token":
			w.Write([]byte(`{"access_token":"tok-e2e"}`))
		case "/oauth2/introspect":
			w.Write([]byte(`{"sub":"42"}`))
		default:
			http.NotFound(w, r)
		}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	token, userID, err := f.Login(ctx, func(authorizeURL string) {
		u, parseErr := url.Parse(authorizeURL)
		if parseErr != nil {
			t.Errorf("parse authorize url: %v", parseErr)
			return
		}
		state := u.Query().Get("state")
		go func() {
			redirect := "http://" + f.cfg.CallbackAddr + "/oauth/callback?state=" + state + "&code=abc"
			// The callback server may still be coming up.
			for i := 0; i < 50; i++ {
				resp, getErr := http.Get(redirect)
				if getErr == nil {
					resp.Body.Close()
					if resp.StatusCode == http.StatusOK {
						return
					}
				}
				time.Sleep(50 * time.Millisecond)
			}
		}()
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != "tok-e2e" || userID != 42 {
		t.Fatalf("login = %q/%d, want tok-e2e/42", token, userID)
	}
}
