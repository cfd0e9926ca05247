// File: internal/plugin/tcs/client.go

// Package tcs implements the client for the Tsunami callback server, the
// out-of-band service that records DNS and HTTP interactions triggered by
// planted payloads.
package tcs

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"
	"golang.org/x/time/rate"

	"github.com/wisdark/tsunami-security-scanner/internal/network"
)

// pollRate caps polling pressure on the callback server. Detectors poll in
// tight validation loops; the limiter keeps that neighborly.
var pollRate = rate.Limit(10)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the callback server. The zero value is not usable; build
// one with NewClient. A Client is safe for concurrent use.
type Client struct {
	address     string
	port        int
	pollingBase string
	isIP        bool
	httpClient  *network.Client
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewClient builds a callback client. address may be a hostname or an IP
// address; pollingBaseURL is the log-polling endpoint, with any trailing
// slashes ignored. An empty address or polling URL yields a disabled client,
// which is valid: payload generation then sticks to in-band validation.
func NewClient(address string, port int, pollingBaseURL string, httpClient *network.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		address:     address,
		port:        port,
		pollingBase: strings.TrimRight(pollingBaseURL, "/"),
		isIP:        net.ParseIP(address) != nil,
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(pollRate, 1),
		logger:      logger.Named("tcs"),
	}
}

// IsEnabled reports whether the callback server is reachable in principle:
// both a callback address and a polling URL are configured.
func (c *Client) IsEnabled() bool {
	return c.address != "" && c.pollingBase != ""
}

// CallbackURI assembles the URI a payload must hit for the interaction to be
// attributed to secret. The callback id is the sha3-224 digest of the
// secret, so the secret itself never travels to the target.
//
// Hostname form:   04041e8898e739ca33.callback.example
// IP form:         http://127.0.0.1:8080/04041e8898e739ca33
func (c *Client) CallbackURI(secret string) string {
	digest := sha3.Sum224([]byte(secret))
	cbid := hex.EncodeToString(digest[:])
	authority := c.authority()
	if !c.isIP {
		return fmt.Sprintf("%s.%s", cbid, authority)
	}
	return fmt.Sprintf("http://%s/%s", authority, cbid)
}

func (c *Client) authority() string {
	host := c.address
	if ip := net.ParseIP(c.address); ip != nil && ip.To4() == nil {
		host = "[" + c.address + "]"
	}
	if c.port == 0 || c.port == 80 {
		return host
	}
	return fmt.Sprintf("%s:%d", host, c.port)
}

// pollingResult mirrors the callback server's polling response body.
type pollingResult struct {
	HasDNSInteraction  bool `json:"has_dns_interaction"`
	HasHTTPInteraction bool `json:"has_http_interaction"`
}

// HasOOBLog polls the callback server for interactions recorded under
// secret. Any transport or decode failure is logged and reported as "no
// interaction"; polling is best effort and must never fail a scan.
func (c *Client) HasOOBLog(ctx context.Context, secret string) bool {
	result, err := c.poll(ctx, secret)
	if err != nil {
		c.logger.Warn("Polling callback server failed", zap.Error(err))
		return false
	}
	return result.HasDNSInteraction || result.HasHTTPInteraction
}

func (c *Client) poll(ctx context.Context, secret string) (*pollingResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/?secret=%s", c.pollingBase, secret)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building polling request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending polling request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("callback server returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading polling response: %w", err)
	}
	var result pollingResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding polling response: %w", err)
	}
	return &result, nil
}
