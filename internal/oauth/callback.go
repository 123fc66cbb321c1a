package oauth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"time"
)

// CallbackResult carries the query parameters Fortnox appends to the
// redirect URI on a successful authorization.
type CallbackResult struct {
	Code  string
	State string
}

// AuthError is an OAuth error response delivered to the callback instead of
// an authorization code.
type AuthError struct {
	Code        string // e.g. "access_denied"
	Description string
}

// Compile-time check that AuthError implements error
var _ error = (*AuthError)(nil)

func (e *AuthError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("authorization failed: %s", e.Code)
	}
	return fmt.Sprintf("authorization failed: %s: %s", e.Code, e.Description)
}

// callbackOutcome is the single value a Listener produces.
type callbackOutcome struct {
	result *CallbackResult
	err    error
}

// Listener is a one-shot loopback HTTP server that captures the OAuth
// redirect. The flow result is an explicit return value from Wait, so no
// state is shared between the handler and the caller beyond the listener
// itself.
type Listener struct {
	ln      net.Listener
	server  *http.Server
	results chan callbackOutcome
}

// NewListener binds the callback listener synchronously, so a port conflict
// surfaces before the operator is sent to the authorization page. The
// returned Listener serves exactly one callback; the caller must Close it.
func NewListener(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	l := &Listener{
		ln:      ln,
		results: make(chan callbackOutcome, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", l.handleCallback)

	l.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := l.server.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.deliver(nil, fmt.Errorf("callback server: %w", err))
		}
	}()

	return l, nil
}

// Addr returns the bound listen address.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// Wait blocks until the browser is redirected back, the context is canceled,
// or the server fails. No timeout is enforced here; cancellation is the
// caller's interrupt context.
func (l *Listener) Wait(ctx context.Context) (*CallbackResult, error) {
	select {
	case out := <-l.results:
		return out.result, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the listener. Safe to call after Wait has returned.
func (l *Listener) Close() error {
	return l.server.Close()
}

func (l *Listener) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	switch {
	case query.Get("code") != "":
		writeHTML(w, http.StatusOK, successPage)
		l.deliver(&CallbackResult{
			Code:  query.Get("code"),
			State: query.Get("state"),
		}, nil)

	case query.Get("error") != "":
		authErr := &AuthError{
			Code:        query.Get("error"),
			Description: query.Get("error_description"),
		}
		writeHTML(w, http.StatusBadRequest, errorPage(authErr))
		l.deliver(nil, authErr)

	default:
		// Neither code nor error: not a redirect we recognize, keep waiting.
		http.Error(w, "missing authorization code", http.StatusBadRequest)
	}
}

// deliver hands the outcome to Wait. Only the first callback counts; later
// requests still get a response page but are otherwise dropped.
func (l *Listener) deliver(result *CallbackResult, err error) {
	select {
	case l.results <- callbackOutcome{result: result, err: err}:
	default:
	}
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

const successPage = `<html>
<head><title>Authorization Successful</title></head>
<body style="font-family: Arial; text-align: center; padding: 50px;">
	<h1 style="color: #4CAF50;">✅ Authorization Successful!</h1>
	<p>You can close this window and return to your terminal.</p>
	<p style="color: #666; font-size: 12px;">Authorization code received. Exchanging for tokens...</p>
</body>
</html>
`

func errorPage(authErr *AuthError) string {
	desc := authErr.Description
	if desc == "" {
		desc = "Unknown error"
	}
	return fmt.Sprintf(`<html>
<head><title>Authorization Failed</title></head>
<body style="font-family: Arial; text-align: center; padding: 50px;">
	<h1 style="color: #f44336;">❌ Authorization Failed</h1>
	<p><strong>Error:</strong> %s</p>
	<p>%s</p>
	<p>Please return to your terminal and try again.</p>
</body>
</html>
`, html.EscapeString(authErr.Code), html.EscapeString(desc))
}
