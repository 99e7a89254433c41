package middleware

import (
	"errors"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/utils"
)

// RouteRules maps a path prefix to the roles allowed per HTTP method.
// A method missing from a prefix's map is not allowed on that prefix.
type RouteRules map[string]map[string][]model.Role

// AccessVerifier verifies access tokens.
type AccessVerifier interface {
	ParseAccessToken(raw string) (utils.AccessClaims, error)
}

type rule struct {
	prefix  string
	methods map[string]map[model.Role]bool
}

// Gate enforces role-based access per (path prefix, method) before any
// handler runs. Its table is fixed at construction.
type Gate struct {
	rules    []rule
	verifier AccessVerifier
	header   string
}

// NewGate copies rules into an immutable table ordered longest prefix
// first. header names the request header carrying "Bearer <token>".
func NewGate(rules RouteRules, verifier AccessVerifier, header string) *Gate {
	if header == "" {
		header = echo.HeaderAuthorization
	}
	g := &Gate{verifier: verifier, header: header}
	for prefix, methods := range rules {
		r := rule{prefix: cleanPath(prefix), methods: make(map[string]map[model.Role]bool, len(methods))}
		for m, roles := range methods {
			set := make(map[model.Role]bool, len(roles))
			for _, role := range roles {
				set[role] = true
			}
			r.methods[strings.ToUpper(m)] = set
		}
		g.rules = append(g.rules, r)
	}
	sort.Slice(g.rules, func(i, j int) bool {
		if len(g.rules[i].prefix) != len(g.rules[j].prefix) {
			return len(g.rules[i].prefix) > len(g.rules[j].prefix)
		}
		return g.rules[i].prefix < g.rules[j].prefix
	})
	return g
}

// Decision is the outcome of Authorize. Status is 0 when the request
// may proceed.
type Decision struct {
	Status    int
	Error     string
	Protected bool
	UserID    string
	Role      model.Role
}

// Allowed reports whether the request may continue.
func (d Decision) Allowed() bool { return d.Status == 0 }

func deny(status int, msg string) Decision {
	return Decision{Status: status, Error: msg, Protected: true}
}

// Authorize decides a request from its path, method and raw header value.
func (g *Gate) Authorize(reqPath, method, headerValue string) Decision {
	r, ok := g.match(cleanPath(reqPath))
	if !ok {
		return Decision{}
	}
	allowed, ok := r.methods[strings.ToUpper(method)]
	if !ok {
		return deny(http.StatusMethodNotAllowed, "method not allowed")
	}
	_, token, _ := strings.Cut(headerValue, " ")
	if token == "" {
		return deny(http.StatusUnauthorized, "unauthorized - no token")
	}
	claims, err := g.verifier.ParseAccessToken(token)
	if errors.Is(err, utils.ErrInvalidPayload) {
		return deny(http.StatusUnauthorized, "invalid token payload")
	}
	if err != nil {
		return deny(http.StatusUnauthorized, "invalid token")
	}
	if !allowed[claims.Role] {
		return deny(http.StatusForbidden, "forbidden - role not allowed")
	}
	return Decision{Protected: true, UserID: claims.UserID, Role: claims.Role}
}

// match finds the longest prefix covering p on segment boundaries:
// "/orders" covers "/orders" and "/orders/my" but not "/ordersx".
func (g *Gate) match(p string) (rule, bool) {
	for _, r := range g.rules {
		if p == r.prefix || r.prefix == "/" || strings.HasPrefix(p, r.prefix+"/") {
			return r, true
		}
	}
	return rule{}, false
}

// cleanPath normalizes duplicate slashes and dot segments.
func cleanPath(p string) string {
	if p == "" || p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

// Middleware runs the gate as an echo Pre middleware. The cleaned path
// replaces the request path so the router sees what the gate checked.
// CORS preflight requests pass through untouched.
func (g *Gate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method == http.MethodOptions {
				return next(c)
			}
			cleaned := cleanPath(req.URL.Path)
			req.URL.Path = cleaned
			req.URL.RawPath = ""

			d := g.Authorize(cleaned, req.Method, req.Header.Get(g.header))
			if !d.Allowed() {
				return c.JSON(d.Status, echo.Map{"error": d.Error})
			}
			if d.Protected {
				c.Set(ContextUserID, d.UserID)
				c.Set(ContextRole, string(d.Role))
			}
			return next(c)
		}
	}
}
