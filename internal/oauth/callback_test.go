package oauth

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestListener(t *testing.T) *Listener {
	t.Helper()

	l, err := NewListener("localhost:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, string(body)
}

func TestListenerSuccessCallback(t *testing.T) {
	l := newTestListener(t)

	resp, body := get(t, "http://"+l.Addr()+"/callback?code=auth-code-1&state=state-1")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Authorization Successful")

	res, err := l.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "auth-code-1", res.Code)
	assert.Equal(t, "state-1", res.State)
}

func TestListenerErrorCallback(t *testing.T) {
	l := newTestListener(t)

	resp, body := get(t, "http://"+l.Addr()+"/callback?error=access_denied&error_description=user+said+no")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Authorization Failed")
	assert.Contains(t, body, "access_denied")
	assert.Contains(t, body, "user said no")

	res, err := l.Wait(context.Background())
	assert.Nil(t, res)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "access_denied", authErr.Code)
	assert.Equal(t, "user said no", authErr.Description)
	assert.Equal(t, "authorization failed: access_denied: user said no", authErr.Error())
}

func TestListenerEscapesErrorPage(t *testing.T) {
	l := newTestListener(t)

	_, body := get(t, "http://"+l.Addr()+"/callback?error=bad&error_description=%3Cscript%3Ealert(1)%3C%2Fscript%3E")

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestListenerKeepsWaitingOnUnrelatedRequests(t *testing.T) {
	l := newTestListener(t)

	resp, _ := get(t, "http://"+l.Addr()+"/favicon.ico")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, "http://"+l.Addr()+"/callback")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res, err := l.Wait(ctx)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListenerFirstCallbackWins(t *testing.T) {
	l := newTestListener(t)

	get(t, "http://"+l.Addr()+"/callback?code=first&state=s")
	get(t, "http://"+l.Addr()+"/callback?code=second&state=s")

	res, err := l.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", res.Code)
}

func TestListenerWaitHonorsCancellation(t *testing.T) {
	l := newTestListener(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := l.Wait(ctx)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListenerPortConflict(t *testing.T) {
	l := newTestListener(t)

	_, err := NewListener(l.Addr())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
