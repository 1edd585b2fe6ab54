package netutil

import (
	"net"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"direct connection", "203.0.113.5:4312", "", "203.0.113.5"},
		{"behind proxy", "10.0.0.1:80", "198.51.100.7", "198.51.100.7"},
		{"proxy chain keeps first hop", "10.0.0.1:80", "198.51.100.7, 10.0.0.2", "198.51.100.7"},
		{"empty forwarded header", "203.0.113.5:4312", "   ", "203.0.113.5"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if got := ClientIP(r); got != tc.want {
				t.Errorf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	testCases := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"192.168.1.1", true},
		{"172.16.0.1", true},
		{"8.8.8.8", false},
		{"203.0.113.5", false},
		{"::1", true},
		{"fe80::1", true},
	}
	for _, tc := range testCases {
		if got := IsPrivateIP(net.ParseIP(tc.ip)); got != tc.want {
			t.Errorf("IsPrivateIP(%s) = %v, want %v", tc.ip, got, tc.want)
		}
	}
}
