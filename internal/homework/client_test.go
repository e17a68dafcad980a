package homework

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logx "hwbot/pkg/logx"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{Endpoint: srv.URL + "/api/user_api/homework_statuses/", Token: "secret", HTTPClient: srv.Client()}, logx.Nop())
}

func TestFetchStatusSendsAuthAndCursor(t *testing.T) {
	var gotAuth, gotFrom, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotFrom = r.URL.Query().Get("from_date")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"homeworks": [], "current_date": 1700000000}`))
	})

	doc, err := c.FetchStatus(context.Background(), 1699999999)
	require.NoError(t, err)
	assert.Equal(t, "OAuth secret", gotAuth)
	assert.Equal(t, "1699999999", gotFrom)
	assert.Equal(t, "/api/user_api/homework_statuses/", gotPath)

	cur, tasks, err := Validate(doc)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), cur)
	assert.Empty(t, tasks)
}

func TestFetchStatusUnexpectedStatusCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	})

	_, err := c.FetchStatus(context.Background(), 1)
	require.ErrorIs(t, err, ErrStatusCode)
	var he *Error
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusServiceUnavailable, he.Code)
	assert.Contains(t, err.Error(), "503")
	assert.NotContains(t, err.Error(), "secret")
}

func TestFetchStatusMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	_, err := c.FetchStatus(context.Background(), 1)
	require.ErrorIs(t, err, ErrMalformedBody)
}

func TestFetchStatusTransportUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	c := NewClient(Config{Endpoint: endpoint, Token: "secret"}, logx.Nop())
	_, err := c.FetchStatus(context.Background(), 1)
	require.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "from_date=1")
}

func TestFetchStatusTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.FetchStatus(ctx, 1)
	require.ErrorIs(t, err, ErrTransport)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchStatusNegativeCursor(t *testing.T) {
	c := NewClient(Config{Token: "secret"}, logx.Nop())
	_, err := c.FetchStatus(context.Background(), -1)
	require.ErrorIs(t, err, ErrShape)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))

	got := truncate(strings.Repeat("ж", 300), 511)
	assert.True(t, utf8.ValidString(got), "invalid utf-8: %q", got)
	assert.Equal(t, strings.Repeat("ж", 255)+"...", got)
}
