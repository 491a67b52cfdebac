package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitReady_ImmediateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := WaitReady(context.Background(), srv.URL)
	assert.NoError(t, err)
}

func TestWaitReady_SucceedsAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := WaitReady(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestWaitReady_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := WaitReady(ctx, srv.URL)
	assert.Error(t, err)
}

func TestGet_DeduplicatesConcurrentRequests(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL)

	const callers = 5
	var wg sync.WaitGroup
	responses := make([]*Response, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			responses[i], errs[i] = c.Get(context.Background(), "/api/v1/tasks")
		}(i)
	}

	// Give the goroutines time to pile onto the in-flight request, then
	// let the single upstream call settle.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent identical reads share one upstream call")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, http.StatusOK, responses[i].StatusCode)
		assert.JSONEq(t, `{"ok":true}`, string(responses[i].Body))
	}
}

func TestGet_SequentialRequestsAreNotShared(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL)

	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), "/health")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(3), calls.Load(), "dedup entries are dropped once settled")
}
