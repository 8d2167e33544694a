package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		Workers:    2,
		Timeout:    5 * time.Second,
		MaxRetries: 1,
		RetryDelay: 10 * time.Millisecond,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClientDrainsAllRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("body:" + r.URL.Path))
	}))
	defer server.Close()

	client := NewClient(testOptions(), discardLogger())

	var mu sync.Mutex
	got := make(map[string]string)
	for _, path := range []string{"/a", "/b", "/c"} {
		path := path
		client.Emit(Request{
			URL: server.URL + path,
			Handler: func(_ context.Context, body []byte) {
				mu.Lock()
				got[path] = string(body)
				mu.Unlock()
			},
		})
	}

	require.NoError(t, client.Run(context.Background()))
	assert.Equal(t, map[string]string{
		"/a": "body:/a",
		"/b": "body:/b",
		"/c": "body:/c",
	}, got)
	assert.Zero(t, client.Failures())
}

func TestClientHandlerCanEmitFollowUps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Path))
	}))
	defer server.Close()

	client := NewClient(testOptions(), discardLogger())

	var handled atomic.Int64
	leaf := func(_ context.Context, _ []byte) {
		handled.Add(1)
	}

	client.Emit(Request{
		URL: server.URL + "/root",
		Handler: func(_ context.Context, _ []byte) {
			handled.Add(1)
			// Fan out from inside a worker, like the category traversal does.
			for _, p := range []string{"/child1", "/child2"} {
				client.Emit(Request{URL: server.URL + p, Handler: leaf})
			}
		},
	})

	require.NoError(t, client.Run(context.Background()))
	assert.Equal(t, int64(3), handled.Load())
}

func TestClientRetriesThenFails(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testOptions(), discardLogger())

	handlerCalled := false
	client.Emit(Request{
		URL: server.URL,
		Handler: func(_ context.Context, _ []byte) {
			handlerCalled = true
		},
	})

	require.NoError(t, client.Run(context.Background()))
	assert.False(t, handlerCalled, "handler must not run for a failed fetch")
	assert.Equal(t, int64(2), hits.Load(), "initial attempt plus one retry")
	assert.Equal(t, int64(1), client.Failures())
}

func TestClientRecoversAfterRetry(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(testOptions(), discardLogger())

	var body string
	client.Emit(Request{
		URL: server.URL,
		Handler: func(_ context.Context, b []byte) {
			body = string(b)
		},
	})

	require.NoError(t, client.Run(context.Background()))
	assert.Equal(t, "ok", body)
	assert.Zero(t, client.Failures())
}

func TestClientSendsHeadersAndCookies(t *testing.T) {
	var gotAccept, gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		if c, err := r.Cookie("session"); err == nil {
			gotCookie = c.Value
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(testOptions(), discardLogger())
	client.Emit(Request{
		URL:     server.URL,
		Headers: map[string]string{"Accept": "application/json"},
		Cookies: map[string]string{"session": "abc"},
		Handler: func(_ context.Context, _ []byte) {},
	})

	require.NoError(t, client.Run(context.Background()))
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "abc", gotCookie)
}
