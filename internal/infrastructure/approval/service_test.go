package approval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrompt(t *testing.T) {
	var received promptPayload
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusNoContent)
		},
	))
	defer server.Close()

	svc, err := NewService(server.URL)
	require.NoError(t, err)

	err = svc.Prompt(context.Background(), "https://dapp.example.com", "session-1")
	require.NoError(t, err)
	require.Equal(t, "https://dapp.example.com", received.Origin)
	require.Equal(t, "session-1", received.Session)
}

func TestPromptSurfaceFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	))
	defer server.Close()

	svc, err := NewService(server.URL)
	require.NoError(t, err)

	err = svc.Prompt(context.Background(), "https://dapp.example.com", "session-1")
	require.Error(t, err)
}

func TestPromptWithoutEndpoint(t *testing.T) {
	svc, err := NewService("")
	require.NoError(t, err)

	err = svc.Prompt(context.Background(), "https://dapp.example.com", "session-1")
	require.ErrorIs(t, err, ErrNoEndpoint)
}

func TestFailingNewService(t *testing.T) {
	_, err := NewService("not a url")
	require.ErrorIs(t, err, ErrInvalidEndpoint)
}
