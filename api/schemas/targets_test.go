package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNetworkEndpointHost(t *testing.T) {
	cases := []struct {
		name     string
		endpoint NetworkEndpoint
		want     string
	}{
		{"hostname wins over IP", NetworkEndpoint{Hostname: "target.example", IPAddress: "10.0.0.1"}, "target.example"},
		{"IPv4 passes through", NetworkEndpoint{IPAddress: "10.0.0.1"}, "10.0.0.1"},
		{"IPv6 is bracketed", NetworkEndpoint{IPAddress: "2001:db8::1"}, "[2001:db8::1]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.endpoint.Host())
		})
	}
}

func TestNetworkEndpointURIAuthority(t *testing.T) {
	cases := []struct {
		name     string
		endpoint NetworkEndpoint
		want     string
	}{
		{"explicit port", NetworkEndpoint{Hostname: "target.example", Port: 8080}, "target.example:8080"},
		{"port 80 is implicit", NetworkEndpoint{Hostname: "target.example", Port: 80}, "target.example"},
		{"no port", NetworkEndpoint{Hostname: "target.example"}, "target.example"},
		{"IPv6 with port", NetworkEndpoint{IPAddress: "2001:db8::1", Port: 8888}, "[2001:db8::1]:8888"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.endpoint.URIAuthority())
		})
	}
}

func TestNetworkServiceIsWebService(t *testing.T) {
	assert.True(t, NetworkService{ServiceName: "http"}.IsWebService())
	assert.True(t, NetworkService{ServiceName: "HTTPS"}.IsWebService())
	assert.True(t, NetworkService{ServiceName: "http-alt"}.IsWebService())
	assert.False(t, NetworkService{ServiceName: "ssh"}.IsWebService())
	assert.False(t, NetworkService{}.IsWebService())
}

func TestNetworkServiceBaseURL(t *testing.T) {
	cases := []struct {
		name    string
		service NetworkService
		want    string
	}{
		{
			"plain http with port",
			NetworkService{Endpoint: NetworkEndpoint{IPAddress: "10.0.0.1", Port: 8888}, ServiceName: "http"},
			"http://10.0.0.1:8888",
		},
		{
			"https service",
			NetworkService{Endpoint: NetworkEndpoint{Hostname: "target.example", Port: 8443}, ServiceName: "https"},
			"https://target.example:8443",
		},
		{
			"ssl-prefixed service",
			NetworkService{Endpoint: NetworkEndpoint{Hostname: "target.example", Port: 443}, ServiceName: "ssl/http"},
			"https://target.example:443",
		},
		{
			"no port",
			NetworkService{Endpoint: NetworkEndpoint{Hostname: "target.example"}, ServiceName: "http"},
			"http://target.example",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.service.BaseURL())
		})
	}
}
