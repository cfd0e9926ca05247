// File: internal/plugin/tcs/client_test.go
package tcs

import (
	"context"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"github.com/wisdark/tsunami-security-scanner/internal/network"
)

func cbid(secret string) string {
	digest := sha3.Sum224([]byte(secret))
	return hex.EncodeToString(digest[:])
}

func TestIsEnabled(t *testing.T) {
	cases := []struct {
		name    string
		address string
		polling string
		want    bool
	}{
		{"fully configured", "127.0.0.1", "http://127.0.0.1:8880", true},
		{"no address", "", "http://127.0.0.1:8880", false},
		{"no polling URL", "127.0.0.1", "", false},
		{"nothing configured", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClient(tc.address, 8881, tc.polling, nil, nil)
			assert.Equal(t, tc.want, c.IsEnabled())
		})
	}
}

func TestCallbackURI(t *testing.T) {
	secret := "A1B2C3D4E5F60718"
	id := cbid(secret)

	t.Run("hostname form prefixes the callback id as a subdomain", func(t *testing.T) {
		c := NewClient("callback.example", 8881, "http://callback.example:8880", nil, nil)
		assert.Equal(t, id+".callback.example:8881", c.CallbackURI(secret))
	})

	t.Run("IP form appends the callback id as a path", func(t *testing.T) {
		c := NewClient("127.0.0.1", 8881, "http://127.0.0.1:8880", nil, nil)
		assert.Equal(t, "http://127.0.0.1:8881/"+id, c.CallbackURI(secret))
	})

	t.Run("port 80 is omitted from the authority", func(t *testing.T) {
		c := NewClient("127.0.0.1", 80, "http://127.0.0.1:8880", nil, nil)
		assert.Equal(t, "http://127.0.0.1/"+id, c.CallbackURI(secret))
	})

	t.Run("port 0 is omitted from the authority", func(t *testing.T) {
		c := NewClient("callback.example", 0, "http://callback.example:8880", nil, nil)
		assert.Equal(t, id+".callback.example", c.CallbackURI(secret))
	})

	t.Run("IPv6 addresses are bracketed", func(t *testing.T) {
		c := NewClient("::1", 8881, "http://[::1]:8880", nil, nil)
		assert.Equal(t, "http://[::1]:8881/"+id, c.CallbackURI(secret))
	})

	t.Run("different secrets yield different ids", func(t *testing.T) {
		c := NewClient("127.0.0.1", 8881, "http://127.0.0.1:8880", nil, nil)
		assert.NotEqual(t, c.CallbackURI("AAAA"), c.CallbackURI("BBBB"))
	})
}

func newPollingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *network.Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	httpClient := network.NewClient(network.ClientConfig{Timeout: 5 * time.Second})
	t.Cleanup(httpClient.CloseIdleConnections)
	return srv, httpClient
}

func TestHasOOBLog(t *testing.T) {
	ctx := context.Background()

	t.Run("reports true on recorded interaction", func(t *testing.T) {
		var gotSecret, gotCacheControl string
		srv, httpClient := newPollingServer(t, func(w http.ResponseWriter, r *http.Request) {
			gotSecret = r.URL.Query().Get("secret")
			gotCacheControl = r.Header.Get("Cache-Control")
			w.Write([]byte(`{"has_dns_interaction": false, "has_http_interaction": true}`))
		})

		c := NewClient("127.0.0.1", 8881, srv.URL, httpClient, nil)
		assert.True(t, c.HasOOBLog(ctx, "SECRET123"))
		assert.Equal(t, "SECRET123", gotSecret)
		assert.Equal(t, "no-cache", gotCacheControl)
	})

	t.Run("reports false when no interaction was recorded", func(t *testing.T) {
		srv, httpClient := newPollingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"has_dns_interaction": false, "has_http_interaction": false}`))
		})

		c := NewClient("127.0.0.1", 8881, srv.URL, httpClient, nil)
		assert.False(t, c.HasOOBLog(ctx, "SECRET123"))
	})

	t.Run("reports false on server error", func(t *testing.T) {
		srv, httpClient := newPollingServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no logs", http.StatusNotFound)
		})

		c := NewClient("127.0.0.1", 8881, srv.URL, httpClient, nil)
		assert.False(t, c.HasOOBLog(ctx, "SECRET123"))
	})

	t.Run("reports false on malformed response", func(t *testing.T) {
		srv, httpClient := newPollingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		})

		c := NewClient("127.0.0.1", 8881, srv.URL, httpClient, nil)
		assert.False(t, c.HasOOBLog(ctx, "SECRET123"))
	})

	t.Run("reports false when the server is unreachable", func(t *testing.T) {
		httpClient := network.NewClient(network.ClientConfig{Timeout: time.Second})
		t.Cleanup(httpClient.CloseIdleConnections)

		c := NewClient("127.0.0.1", 8881, "http://127.0.0.1:1", httpClient, nil)
		assert.False(t, c.HasOOBLog(ctx, "SECRET123"))
	})
}

func TestPollingBaseTrailingSlash(t *testing.T) {
	var gotPath string
	srv, httpClient := newPollingServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"has_dns_interaction": true, "has_http_interaction": false}`))
	})

	c := NewClient("127.0.0.1", 8881, srv.URL+"///", httpClient, nil)
	require.True(t, c.HasOOBLog(context.Background(), "SECRET123"))
	assert.Equal(t, "/", gotPath, "trailing slashes must not stack up in the polling URL")
}
