package schemas

import (
	"fmt"
	"net"
	"strings"
)

// -- Scan Target Schemas --

// NetworkEndpoint identifies one reachable address on a scan target. Either
// IPAddress or Hostname is set; Port is zero when the endpoint does not pin
// a specific port.
type NetworkEndpoint struct {
	IPAddress string `json:"ip_address,omitempty"`
	Hostname  string `json:"hostname,omitempty"`
	Port      int    `json:"port,omitempty"`
}

// Host returns the hostname when present, otherwise the IP address. IPv6
// addresses are bracketed so the result can be joined with a port.
func (e NetworkEndpoint) Host() string {
	if e.Hostname != "" {
		return e.Hostname
	}
	if ip := net.ParseIP(e.IPAddress); ip != nil && ip.To4() == nil {
		return "[" + e.IPAddress + "]"
	}
	return e.IPAddress
}

// URIAuthority renders the endpoint as a URI authority, e.g. "example.com",
// "example.com:8080" or "[2001:db8::1]:8080". A port of 80 is treated as
// implicit and omitted.
func (e NetworkEndpoint) URIAuthority() string {
	host := e.Host()
	if e.Port == 0 || e.Port == 80 {
		return host
	}
	return fmt.Sprintf("%s:%d", host, e.Port)
}

// NetworkService describes one exposed service on a target endpoint, as
// identified during reconnaissance by the orchestrator.
type NetworkService struct {
	Endpoint          NetworkEndpoint `json:"network_endpoint"`
	TransportProtocol string          `json:"transport_protocol,omitempty"`
	ServiceName       string          `json:"service_name,omitempty"`
	Software          string          `json:"software,omitempty"`
}

// IsWebService reports whether the service speaks HTTP(S).
func (s NetworkService) IsWebService() bool {
	switch strings.ToLower(s.ServiceName) {
	case "http", "https", "http-alt", "http-proxy", "ssl/http", "ssl/https":
		return true
	}
	return false
}

// BaseURL builds the root URL used to probe a web service.
func (s NetworkService) BaseURL() string {
	scheme := "http"
	if strings.Contains(strings.ToLower(s.ServiceName), "https") ||
		strings.HasPrefix(strings.ToLower(s.ServiceName), "ssl") {
		scheme = "https"
	}
	host := s.Endpoint.Host()
	if s.Endpoint.Port != 0 {
		return fmt.Sprintf("%s://%s:%d", scheme, host, s.Endpoint.Port)
	}
	return fmt.Sprintf("%s://%s", scheme, host)
}

// TargetInfo describes the scan target itself, independent of any single
// service running on it.
type TargetInfo struct {
	NetworkEndpoints []NetworkEndpoint `json:"network_endpoints,omitempty"`
}
