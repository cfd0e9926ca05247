// File: internal/network/httpclient_test.go
package network

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(ClientConfig{})
	defer client.CloseIdleConnections()

	assert.Equal(t, DefaultTimeout, client.Timeout)

	tagging, ok := client.Transport.(*taggingTransport)
	require.True(t, ok, "client must install the tagging transport")
	base, ok := tagging.base.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, DefaultMaxIdleConns, base.MaxIdleConns)
	assert.Equal(t, DefaultMaxIdleConnsPerHost, base.MaxIdleConnsPerHost)
	assert.False(t, base.TLSClientConfig.InsecureSkipVerify)
}

func TestNewClient_TrustAllCerts(t *testing.T) {
	client := NewClient(ClientConfig{TrustAllCerts: true})
	defer client.CloseIdleConnections()

	tagging := client.Transport.(*taggingTransport)
	base := tagging.base.(*http.Transport)
	assert.True(t, base.TLSClientConfig.InsecureSkipVerify)

	// The relaxed verification must actually let a self-signed server through.
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestTaggingTransport_Headers(t *testing.T) {
	var gotUserAgent, gotLogID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotLogID = r.Header.Get(logIDHeader)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{Timeout: 5 * time.Second, LogID: "scan-42"})
	defer client.CloseIdleConnections()

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, userAgent, gotUserAgent)
	assert.Equal(t, "scan-42", gotLogID)
}

func TestTaggingTransport_PreservesCallerUserAgent(t *testing.T) {
	var gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{Timeout: 5 * time.Second})
	defer client.CloseIdleConnections()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom-probe/1.0")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "custom-probe/1.0", gotUserAgent)
}

func TestTaggingTransport_DoesNotMutateRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := NewClient(ClientConfig{Timeout: 5 * time.Second, LogID: "scan-7"})
	defer client.CloseIdleConnections()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, req.Header.Get(logIDHeader), "original request headers must be untouched")
}
