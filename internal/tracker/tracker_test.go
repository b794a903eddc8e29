package tracker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPCatcherEmptyEndpoint(t *testing.T) {
	catcher := NewHTTPCatcher("", "token", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.IsType(t, Nop{}, catcher)

	// Nop must be safe to call.
	catcher.Send(context.Background(), errors.New("boom"), nil)
}

func TestHTTPCatcherSend(t *testing.T) {
	var got event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	catcher := NewHTTPCatcher(srv.URL, "integration-token", slog.New(slog.NewTextHandler(io.Discard, nil)))
	catcher.Send(context.Background(), errors.New("card faulted"), map[string]any{"job": "todo-digest"})

	assert.Equal(t, "integration-token", got.Token)
	assert.Equal(t, "errors/go", got.CatcherType)
	assert.Equal(t, "card faulted", got.Payload.Title)
	assert.Equal(t, "todo-digest", got.Payload.Context["job"])
}

func TestHTTPCatcherNeverFailsCaller(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("rejected"))
	}))
	defer srv.Close()

	catcher := NewHTTPCatcher(srv.URL, "token", slog.New(slog.NewTextHandler(io.Discard, nil)))

	// Rejection is logged, not returned; an unreachable collector likewise.
	catcher.Send(context.Background(), errors.New("boom"), nil)

	unreachable := NewHTTPCatcher("http://127.0.0.1:0", "token", slog.New(slog.NewTextHandler(io.Discard, nil)))
	unreachable.Send(context.Background(), errors.New("boom"), nil)
}
