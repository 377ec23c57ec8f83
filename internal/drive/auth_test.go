package drive

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgodinho/skunav/internal/domain"
)

func TestTokenAuthConnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"user":{"displayName":"m"}}`))
	}))
	defer srv.Close()

	auth := NewTokenAuth(srv.URL, "good-token", nil)
	require.True(t, auth.IsConnected())
	require.NoError(t, auth.Connect(context.Background()))

	auth.SetToken("expired")
	err := auth.Connect(context.Background())
	assert.True(t, errors.Is(err, domain.ErrAuthRequired))
}

func TestTokenAuthNoToken(t *testing.T) {
	auth := NewTokenAuth("", "", nil)
	assert.False(t, auth.IsConnected())

	err := auth.Connect(context.Background())
	assert.True(t, errors.Is(err, domain.ErrAuthRequired))
}

func TestTokenAuthUnreachable(t *testing.T) {
	auth := NewTokenAuth("http://127.0.0.1:1", "tok", nil)
	err := auth.Connect(context.Background())
	assert.True(t, domain.IsTransient(err))
}
