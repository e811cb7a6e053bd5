package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Login runs the whole interactive flow: start the local callback
// server, hand the authorize URL to prompt (the caller shows it or
// opens a browser), wait for the redirect, exchange and introspect.
// It returns the access token and the current user id.
//
// The flow stops on the first redirect or on ctx cancellation; there is
// no retry and the server always shuts down before Login returns.
func (f *Flow) Login(ctx context.Context, prompt func(authorizeURL string)) (string, int, error) {
	state := uuid.NewString()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	srv := &http.Server{
		Addr:    f.cfg.CallbackAddr,
		Handler: f.callbackRouter(state, codeCh),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	prompt(f.AuthorizeURL(state))

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return "", 0, fmt.Errorf("auth: callback server: %w", err)
	case <-ctx.Done():
		return "", 0, ctx.Err()
	}

	token, err := f.Exchange(ctx, code)
	if err != nil {
		return "", 0, err
	}
	userID, err := f.Introspect(ctx, token)
	if err != nil {
		return "", 0, err
	}
	return token, userID, nil
}

// callbackRouter serves the single redirect endpoint. The state check
// rejects redirects this process did not initiate.
func (f *Flow) callbackRouter(state string, codeCh chan<- string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/oauth/callback", func(c *gin.Context) {
		if errParam := c.Query("error"); errParam != "" {
			c.String(http.StatusBadRequest, "authorization failed: %s", errParam)
			return
		}
		if c.Query("state") != state {
			c.String(http.StatusBadRequest, "state mismatch")
			return
		}
		code := c.Query("code")
		if code == "" {
			c.String(http.StatusBadRequest, "missing code")
			return
		}
		select {
		case codeCh <- code:
			c.String(http.StatusOK, "Logged in. You can close this window.")
		default:
			// A second redirect with the same state; the first won.
			c.String(http.StatusConflict, "login already completed")
		}
	})

	return r
}
