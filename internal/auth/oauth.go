// Package auth runs the OAuth2 authorization-code flow against the
// gather authorization server: build the authorize URL, catch the
// redirect on a local callback server, exchange the code for an access
// token, and introspect it for the current user id.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config is the client registration with the authorization server.
type Config struct {
	AuthURL      string // e.g. http://localhost:9000
	ClientID     string
	ClientSecret string
	CallbackAddr string // listen address for the redirect, e.g. localhost:5556
}

// Flow performs the token dance. It is the only component that mutates
// a Session, via its caller.
type Flow struct {
	cfg  Config
	http *http.Client
}

// NewFlow validates the config.
func NewFlow(cfg Config) (*Flow, error) {
	if cfg.AuthURL == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("auth: AuthURL, ClientID and ClientSecret are required")
	}
	if cfg.CallbackAddr == "" {
		cfg.CallbackAddr = "localhost:5556"
	}
	cfg.AuthURL = strings.TrimSuffix(cfg.AuthURL, "/")
	return &Flow{cfg: cfg, http: &http.Client{Timeout: 30 * time.Second}}, nil
}

// RedirectURI is the registered redirect target served by the local
// callback server.
func (f *Flow) RedirectURI() string {
	return "http://" + f.cfg.CallbackAddr + "/oauth/callback"
}

// AuthorizeURL builds the browser URL that starts the flow. state must
// be a fresh nonce; the callback rejects any other value.
func (f *Flow) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", f.cfg.ClientID)
	q.Set("redirect_uri", f.RedirectURI())
	q.Set("state", state)
	return f.cfg.AuthURL + "/oauth2/authorize?" + q.Encode()
}

// Exchange trades an authorization code for an access token. The token
// endpoint takes the grant parameters in the query and authenticates
// the client with HTTP Basic credentials.
func (f *Flow) Exchange(ctx context.Context, code string) (string, error) {
	q := url.Values{}
	q.Set("grant_type", "authorization_code")
	q.Set("code", code)
	q.Set("redirect_uri", f.RedirectURI())
	q.Set("client_id", f.cfg.ClientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.AuthURL+"/oauth2/token?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(f.cfg.ClientID, f.cfg.ClientSecret)

	body, err := f.roundTrip(req)
	if err != nil {
		return "", fmt.Errorf("auth: token exchange: %w", err)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("auth: token exchange: decode: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("auth: token exchange: no access_token in response")
	}
	return payload.AccessToken, nil
}

// Introspect asks the authorization server who the token belongs to and
// returns the numeric subject.
func (f *Flow) Introspect(ctx context.Context, token string) (int, error) {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.AuthURL+"/oauth2/introspect", strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(f.cfg.ClientID, f.cfg.ClientSecret)

	body, err := f.roundTrip(req)
	if err != nil {
		return 0, fmt.Errorf("auth: introspect: %w", err)
	}

	var payload struct {
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("auth: introspect: decode: %w", err)
	}
	userID, err := strconv.Atoi(payload.Sub)
	if err != nil {
		return 0, fmt.Errorf("auth: introspect: non-numeric sub %q", payload.Sub)
	}
	return userID, nil
}

// roundTrip executes the request and returns the body of a 2xx
// response, or an error carrying the status and body text.
func (f *Flow) roundTrip(req *http.Request) ([]byte, error) {
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = "Bad Request"
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}
	return body, nil
}
