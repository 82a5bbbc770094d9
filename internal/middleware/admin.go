package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AdminGate restricts the admin pages to loopback clients addressing a
// trusted host, with an optional bcrypt-protected basic auth fallback for
// everyone else. The Host header alone is client controlled and never
// enough.
type AdminGate struct {
	hosts        map[string]struct{}
	user         string
	passwordHash []byte
}

// NewAdminGate builds a gate from the configured host list. An empty
// passwordHash disables the basic auth fallback.
func NewAdminGate(hosts []string, user, passwordHash string) *AdminGate {
	g := &AdminGate{
		hosts: make(map[string]struct{}, len(hosts)),
		user:  user,
	}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			g.hosts[h] = struct{}{}
		}
	}
	if passwordHash != "" {
		g.passwordHash = []byte(passwordHash)
	}
	return g
}

// Middleware lets loopback requests for allowed hosts through. Everyone else
// must authenticate when a password is configured and is refused with 403
// otherwise.
func (g *AdminGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.hostAllowed(r.Host) && isLoopback(r.RemoteAddr) {
			next.ServeHTTP(w, r)
			return
		}

		if g.passwordHash != nil {
			user, pass, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="flik admin", charset="UTF-8"`)
				http.Error(w, "Autenticación requerida", http.StatusUnauthorized)
				return
			}
			if g.credentialsValid(user, pass) {
				next.ServeHTTP(w, r)
				return
			}
		}

		http.Error(w, "Acceso denegado", http.StatusForbidden)
	})
}

func (g *AdminGate) hostAllowed(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.Trim(host, "[]"))
	_, ok := g.hosts[host]
	return ok
}

// isLoopback reports whether the connection comes from this machine.
func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (g *AdminGate) credentialsValid(user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(g.user)) == 1
	passOK := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(pass)) == nil
	return userOK && passOK
}
