package notehub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/notehub/internal/model"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestListNotes_QueryAndMetadata(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/notes", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "12", r.URL.Query().Get("perPage"))
		assert.Equal(t, "milk", r.URL.Query().Get("search"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"notes":[{"id":"n1","title":"Buy milk","tag":"Shopping"}],"totalPages":3,"page":2,"perPage":12,"totalItems":25}`))
	})

	c := New(srv.URL + "/api/")
	page, err := c.ListNotes(context.Background(), model.ListParams{Page: 2, PerPage: 12, Search: "milk"})
	require.NoError(t, err)

	require.Len(t, page.Notes, 1)
	assert.Equal(t, "n1", page.Notes[0].ID)
	assert.Equal(t, model.TagShopping, page.Notes[0].Tag)
	assert.Equal(t, 3, page.TotalPages)
	require.NotNil(t, page.Page)
	assert.Equal(t, 2, *page.Page)
	require.NotNil(t, page.TotalItems)
	assert.Equal(t, 25, *page.TotalItems)
}

func TestListNotes_EmptySearchIsAbsent(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["search"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"notes":null,"totalPages":0}`))
	})

	page, err := New(srv.URL).ListNotes(context.Background(), model.ListParams{Page: 1, PerPage: 12})
	require.NoError(t, err)
	assert.NotNil(t, page.Notes)
	assert.Empty(t, page.Notes)
	assert.Nil(t, page.Page)
	assert.Nil(t, page.PerPage)
}

func TestCreateNote_SendsBodyAndToken(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/notes", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Plan sprint", body["title"])
		assert.Equal(t, "Work", body["tag"])
		_, hasContent := body["content"]
		assert.False(t, hasContent, "empty content must be omitted")

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"n9","title":"Plan sprint","tag":"Work","createdAt":"2026-01-02T03:04:05Z"}`))
	})

	c := New(srv.URL, WithToken("secret"))
	n, err := c.CreateNote(context.Background(), model.CreateInput{Title: "Plan sprint", Tag: model.TagWork})
	require.NoError(t, err)
	assert.Equal(t, "n9", n.ID)
	require.NotNil(t, n.CreatedAt)
	assert.Equal(t, 2026, n.CreatedAt.Year())
}

func TestNoToken_NoAuthorizationHeader(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"notes":[],"totalPages":1}`))
	})

	_, err := New(srv.URL).ListNotes(context.Background(), model.ListParams{Page: 1, PerPage: 12})
	require.NoError(t, err)
}

func TestDeleteNote_EscapesID(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/notes/a%2Fb", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"id":"a/b","title":"gone","tag":"Todo"}`))
	})

	n, err := New(srv.URL).DeleteNote(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", n.ID)
}

func TestDeleteNote_NotFound(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Note not found"}`))
	})

	_, err := New(srv.URL).DeleteNote(context.Background(), "missing")
	require.Error(t, err)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "deleteNote", te.Op)
	assert.Equal(t, http.StatusNotFound, te.StatusCode)
	assert.Equal(t, "Note not found", err.Error())
	assert.True(t, IsNotFound(err))
}

func TestHTTPErrorWithoutMessage(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := New(srv.URL).ListNotes(context.Background(), model.ListParams{Page: 1, PerPage: 12})
	require.Error(t, err)
	assert.Equal(t, "request failed with status code 500", err.Error())
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestMalformedResponse(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"notes": [`))
	})

	_, err := New(srv.URL).ListNotes(context.Background(), model.ListParams{Page: 1, PerPage: 12})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Message, "malformed response")
}

func TestResponseTooLarge(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body := append([]byte(`{"notes":[],"pad":"`), bytes.Repeat([]byte("x"), maxBodyBytes)...)
		_, _ = w.Write(append(body, `"}`...))
	})

	_, err := New(srv.URL).ListNotes(context.Background(), model.ListParams{Page: 1, PerPage: 12})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusOK, te.StatusCode)
	assert.Contains(t, te.Message, "response too large")
	assert.NotContains(t, te.Message, "malformed")
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	c := New(srv.URL, WithTimeout(50*time.Millisecond))
	assert.Equal(t, 50*time.Millisecond, c.httpClient.Timeout)

	start := time.Now()
	_, err := c.ListNotes(context.Background(), model.ListParams{Page: 1, PerPage: 12})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Message, "network error")
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.Equal(t, DefaultTimeout, New(srv.URL, WithTimeout(0)).httpClient.Timeout)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New(addr, WithTimeout(time.Second)).ListNotes(context.Background(), model.ListParams{Page: 1, PerPage: 12})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
	assert.Contains(t, te.Message, "network error")
	assert.NotNil(t, errors.Unwrap(err))
}

func TestRateLimit_CancelledWait(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"notes":[],"totalPages":1}`))
	})

	c := New(srv.URL, WithRateLimit(0.001, 1))
	_, err := c.ListNotes(context.Background(), model.ListParams{Page: 1, PerPage: 12})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.ListNotes(ctx, model.ListParams{Page: 1, PerPage: 12})
	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Message, "rate limit")
	assert.Equal(t, int32(1), hits.Load())
}

func TestFormatHeaders_Redacts(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer secret")
	h.Set("X-Request-ID", "abc")

	out := formatHeaders(h)
	assert.Contains(t, out, `authorization="[REDACTED]"`)
	assert.Contains(t, out, `x-request-id="abc"`)
	assert.NotContains(t, out, "secret")
	assert.Equal(t, "{}", formatHeaders(nil))
}
