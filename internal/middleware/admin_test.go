package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func adminRequest(host string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Host = host
	req.RemoteAddr = "127.0.0.1:51234"
	return req
}

func TestAdminGateHosts(t *testing.T) {
	gate := NewAdminGate([]string{"localhost", " Admin.Flik.cl ", ""}, "admin", "")
	handler := gate.Middleware(okHandler())

	tests := []struct {
		host string
		want int
	}{
		{"localhost", http.StatusOK},
		{"localhost:8080", http.StatusOK},
		{"admin.flik.cl", http.StatusOK},
		{"ADMIN.FLIK.CL:443", http.StatusOK},
		{"flik.cl", http.StatusForbidden},
		{"evil.localhost", http.StatusForbidden},
		{"", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, adminRequest(tt.host))
			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusForbidden {
				assert.Contains(t, rr.Body.String(), "Acceso denegado")
			}
		})
	}
}

func TestAdminGateIPv6Host(t *testing.T) {
	handler := NewAdminGate([]string{"::1"}, "admin", "").Middleware(okHandler())

	rr := httptest.NewRecorder()
	req := adminRequest("[::1]:8080")
	req.RemoteAddr = "[::1]:51234"
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAdminGateRejectsSpoofedHost(t *testing.T) {
	handler := NewAdminGate([]string{"localhost"}, "admin", "").Middleware(okHandler())

	for _, remote := range []string{"203.0.113.5:44321", "[2001:db8::1]:443", "10.0.0.8:80", "garbage"} {
		t.Run(remote, func(t *testing.T) {
			req := adminRequest("localhost")
			req.RemoteAddr = remote
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusForbidden, rr.Code)
		})
	}
}

func TestAdminGateSpoofedHostStillNeedsPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)
	require.NoError(t, err)
	handler := NewAdminGate([]string{"localhost"}, "admin", string(hash)).Middleware(okHandler())

	req := adminRequest("localhost")
	req.RemoteAddr = "203.0.113.5:44321"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req.SetBasicAuth("admin", "secreto")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestIsLoopback(t *testing.T) {
	assert.True(t, isLoopback("127.0.0.1:80"))
	assert.True(t, isLoopback("[::1]:80"))
	assert.True(t, isLoopback("127.0.0.1"))
	assert.False(t, isLoopback("192.0.2.1:1234"))
	assert.False(t, isLoopback(""))
}

func TestAdminGateBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)
	require.NoError(t, err)

	handler := NewAdminGate([]string{"localhost"}, "admin", string(hash)).Middleware(okHandler())

	t.Run("missing credentials are challenged", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, adminRequest("flik.cl"))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Basic")
	})

	t.Run("valid credentials pass", func(t *testing.T) {
		req := adminRequest("flik.cl")
		req.SetBasicAuth("admin", "secreto")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("wrong password is forbidden", func(t *testing.T) {
		req := adminRequest("flik.cl")
		req.SetBasicAuth("admin", "otro")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("wrong user is forbidden", func(t *testing.T) {
		req := adminRequest("flik.cl")
		req.SetBasicAuth("root", "secreto")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("allowed host skips auth", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, adminRequest("localhost:3000"))
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
