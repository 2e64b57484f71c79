package httpclient

import (
	"net/http"
	"strings"
)

// Route matches a method and a path. A Path ending in "/*" matches the prefix and
// everything below it. An empty Method matches any method.
type Route struct {
	Method string
	Path   string
}

func (r Route) matches(method, path string) bool {
	if r.Method != "" && !strings.EqualFold(r.Method, method) {
		return false
	}
	if prefix, ok := strings.CutSuffix(r.Path, "/*"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == r.Path
}

// Policy lists the requests whose 401 responses propagate to the caller instead of
// sending the user to the login screen.
type Policy struct {
	SessionProbes []Route
	PublicReads   []Route
}

// DefaultPolicy exempts the session probes and the public catalog reads.
func DefaultPolicy() Policy {
	return Policy{
		SessionProbes: []Route{
			{Method: http.MethodGet, Path: "/api/auth/profile"},
			{Method: http.MethodPost, Path: "/api/auth/verify"},
		},
		PublicReads: []Route{
			{Method: http.MethodGet, Path: "/api/cloth/*"},
		},
	}
}

func (p Policy) Exempt(method, path string) bool {
	for _, r := range p.SessionProbes {
		if r.matches(method, path) {
			return true
		}
	}
	for _, r := range p.PublicReads {
		if r.matches(method, path) {
			return true
		}
	}
	return false
}
