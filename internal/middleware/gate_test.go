package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/utils"
)

// fakeVerifier resolves tokens by looking them up in a map.
type fakeVerifier map[string]utils.AccessClaims

func (f fakeVerifier) ParseAccessToken(raw string) (utils.AccessClaims, error) {
	switch raw {
	case "bad-payload":
		return utils.AccessClaims{}, utils.ErrInvalidPayload
	case "expired":
		return utils.AccessClaims{}, utils.ErrTokenExpired
	}
	c, ok := f[raw]
	if !ok {
		return utils.AccessClaims{}, utils.ErrTokenInvalid
	}
	return c, nil
}

var (
	admin = []model.Role{model.RoleAdmin}
	both  = []model.Role{model.RoleAdmin, model.RoleDistributor}
)

func testGate() *Gate {
	rules := RouteRules{
		"/orders":    {"GET": admin, "POST": both},
		"/orders/my": {"GET": both},
		"/users":     {"PUT": both, "DELETE": admin},
	}
	verifier := fakeVerifier{
		"admin-tok": {UserID: "a1", Role: model.RoleAdmin},
		"dist-tok":  {UserID: "d1", Role: model.RoleDistributor},
	}
	return NewGate(rules, verifier, "")
}

func TestAuthorize(t *testing.T) {
	g := testGate()
	cases := []struct {
		name, path, method, header string
		status                     int
		user                       string
	}{
		{"public path", "/auth/login", "POST", "", 0, ""},
		{"admin list", "/orders", "GET", "Bearer admin-tok", 0, "a1"},
		{"distributor list forbidden", "/orders", "GET", "Bearer dist-tok", 403, ""},
		{"longest prefix wins", "/orders/my", "GET", "Bearer dist-tok", 0, "d1"},
		{"method per prefix", "/orders/my", "POST", "Bearer dist-tok", 405, ""},
		{"nested under prefix", "/orders/abc/status", "GET", "Bearer admin-tok", 0, "a1"},
		{"segment aware", "/ordersx", "GET", "", 0, ""},
		{"unknown method", "/orders", "DELETE", "Bearer admin-tok", 405, ""},
		{"no header", "/orders", "POST", "", 401, ""},
		{"no token after scheme", "/orders", "POST", "Bearer", 401, ""},
		{"bad token", "/orders", "POST", "Bearer nope", 401, ""},
		{"expired token", "/orders", "POST", "Bearer expired", 401, ""},
		{"bad payload", "/orders", "POST", "Bearer bad-payload", 401, ""},
		{"dot segments cleaned", "/users/../orders", "GET", "Bearer dist-tok", 403, ""},
		{"double slash cleaned", "//orders//my", "GET", "Bearer dist-tok", 0, "d1"},
		{"lowercase method", "/users", "put", "Bearer dist-tok", 0, "d1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := g.Authorize(tc.path, tc.method, tc.header)
			if d.Status != tc.status {
				t.Fatalf("status = %d (%s), want %d", d.Status, d.Error, tc.status)
			}
			if d.UserID != tc.user {
				t.Fatalf("user = %q, want %q", d.UserID, tc.user)
			}
		})
	}
}

func TestAuthorizeMessages(t *testing.T) {
	g := testGate()
	if d := g.Authorize("/orders", "GET", ""); d.Error != "unauthorized - no token" {
		t.Fatalf("no token: %q", d.Error)
	}
	if d := g.Authorize("/orders", "GET", "Bearer bad-payload"); d.Error != "invalid token payload" {
		t.Fatalf("payload: %q", d.Error)
	}
	if d := g.Authorize("/orders", "GET", "Bearer nope"); d.Error != "invalid token" {
		t.Fatalf("invalid: %q", d.Error)
	}
	if d := g.Authorize("/orders", "GET", "Bearer dist-tok"); d.Error != "forbidden - role not allowed" {
		t.Fatalf("forbidden: %q", d.Error)
	}
	if d := g.Authorize("/orders", "PUT", "Bearer admin-tok"); d.Error != "method not allowed" {
		t.Fatalf("method: %q", d.Error)
	}
}

func TestGateMiddleware(t *testing.T) {
	g := testGate()
	e := echo.New()
	e.Pre(g.Middleware())
	e.GET("/orders/my", func(c echo.Context) error {
		return c.String(http.StatusOK, UserID(c)+":"+string(Role(c)))
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "anon="+UserID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "//orders/./my", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer dist-tok")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "d1:distributor" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/orders/my", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", rec.Code)
	}
	if rec.Body.String() != "{\"error\":\"unauthorized - no token\"}\n" {
		t.Fatalf("body = %q", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "anon=" {
		t.Fatalf("public: %d %q", rec.Code, rec.Body.String())
	}
}

func TestPreflightBypassesGate(t *testing.T) {
	g := testGate()
	called := false
	h := g.Middleware()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusNoContent)
	})
	e := echo.New()
	req := httptest.NewRequest(http.MethodOptions, "/orders", nil)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if !called || rec.Code != http.StatusNoContent {
		t.Fatalf("preflight blocked: called=%v code=%d", called, rec.Code)
	}
}

func TestCustomHeader(t *testing.T) {
	g := NewGate(RouteRules{"/orders": {"GET": admin}}, fakeVerifier{
		"admin-tok": {UserID: "a1", Role: model.RoleAdmin},
	}, "token")
	e := echo.New()
	e.Pre(g.Middleware())
	e.GET("/orders", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("token", "Bearer admin-tok")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
}
