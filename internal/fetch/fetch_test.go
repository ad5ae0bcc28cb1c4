package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practio/adminx-os/internal/errs"
)

func TestDoParsesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/me", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"u1","roles":["admin"]}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, Options{})
	require.NoError(t, err)

	got, err := c.Do(context.Background(), "/api/auth/me", Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "u1", "roles": []any{"admin"}}, got)
}

func TestDoReturnsRawTextWhenNotJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "plain <b>text</b>")
	}))
	defer srv.Close()

	c, err := New(srv.URL, Options{})
	require.NoError(t, err)

	got, err := c.Do(context.Background(), "/", Options{})
	require.NoError(t, err)
	assert.Equal(t, "plain <b>text</b>", got)
}

func TestDoFailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "no such user")
	}))
	defer srv.Close()

	var observed []int
	c, err := New(srv.URL, Options{}, WithObserver(func(status int) { observed = append(observed, status) }))
	require.NoError(t, err)

	_, err = c.Do(context.Background(), "/api/auth/me", Options{})
	require.Error(t, err)

	var fetchErr *Error
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "no such user", fetchErr.Error())
	assert.Equal(t, http.StatusNotFound, fetchErr.Response.Status)
	assert.Equal(t, "/api/auth/me", fetchErr.Request.URL.Path)
	assert.Equal(t, errs.CodeFetch, errs.CodeOf(err))
	assert.Equal(t, []int{http.StatusNotFound}, observed)
}

func TestErrorMessageFromJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"expired"}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, Options{})
	require.NoError(t, err)

	_, err = c.Do(context.Background(), "/", Options{})
	require.Error(t, err)
	assert.Equal(t, `{"error":"expired"}`, err.Error())
	assert.NotEmpty(t, errs.StackOf(err))
}

func TestDoMergesOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "call", r.Header.Get("X-Source"))
		assert.Equal(t, "session=abc", r.Header.Get("Cookie"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"name": "Ada"}, body)

		_, _ = io.WriteString(w, `"ok"`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, Options{Headers: map[string]string{
		"Accept":   "application/json",
		"X-Source": "base",
		"Cookie":   "session=abc",
	}})
	require.NoError(t, err)

	got, err := c.Do(context.Background(), "/users", Options{
		Method:  http.MethodPost,
		Headers: map[string]string{"X-Source": "call"},
		Body:    map[string]any{"name": "Ada"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestMergeDoesNotMutateBase(t *testing.T) {
	base := Options{Headers: map[string]string{"A": "1"}}
	merged := Merge(base, Options{Headers: map[string]string{"A": "2", "B": "3"}})

	assert.Equal(t, http.MethodGet, merged.Method)
	assert.Equal(t, map[string]string{"A": "2", "B": "3"}, merged.Headers)
	assert.Equal(t, map[string]string{"A": "1"}, base.Headers)
}

func TestDoHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, err := New(srv.URL, Options{}, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Do(ctx, "/", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
