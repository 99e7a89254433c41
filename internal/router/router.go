// Package router builds the echo instance: the middleware chain, the
// role table enforced by the gate and the route registrations.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/distributor-orders/internal/handler"
	"github.com/iliyamo/distributor-orders/internal/middleware"
	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/service"
	"github.com/iliyamo/distributor-orders/internal/validate"
)

var (
	admin       = []model.Role{model.RoleAdmin}
	adminOrDist = []model.Role{model.RoleAdmin, model.RoleDistributor}
)

// DefaultRules is the role table for the API. Paths not listed (auth,
// health) are public.
func DefaultRules() middleware.RouteRules {
	return middleware.RouteRules{
		"/users": {
			http.MethodGet:    admin,
			http.MethodPost:   admin,
			http.MethodPut:    adminOrDist,
			http.MethodPatch:  admin,
			http.MethodDelete: admin,
		},
		"/orders": {
			http.MethodGet:   admin,
			http.MethodPost:  adminOrDist,
			http.MethodPatch: admin,
		},
		"/orders/my": {
			http.MethodGet: adminOrDist,
		},
		"/products": {
			http.MethodGet:    adminOrDist,
			http.MethodPost:   admin,
			http.MethodPut:    admin,
			http.MethodDelete: admin,
		},
		"/cloudinary-signature": {
			http.MethodPost: adminOrDist,
		},
	}
}

// Deps is everything the HTTP layer needs. Cache, RateLimit and Signer
// may be nil.
type Deps struct {
	Log         *zap.SugaredLogger
	Validator   *validate.Validator
	Verifier    middleware.AccessVerifier
	AuthHeader  string
	CORSOrigins []string
	// Rules overrides DefaultRules when set.
	Rules middleware.RouteRules

	Auth     *service.AuthService
	Users    *service.UserService
	Products *service.ProductService
	Orders   *service.OrderService
	Signer   handler.UploadSigner

	Cache     *middleware.ResponseCache
	RateLimit echo.MiddlewareFunc
}

// New returns a configured echo instance with every route registered.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	rules := d.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	gate := middleware.NewGate(rules, d.Verifier, d.AuthHeader)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if d.Validator != nil {
		e.Validator = d.Validator
	}
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	allowHeaders := []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization}
	if d.AuthHeader != "" && d.AuthHeader != echo.HeaderAuthorization {
		allowHeaders = append(allowHeaders, d.AuthHeader)
	}
	corsCfg := echomw.DefaultCORSConfig
	corsCfg.AllowHeaders = allowHeaders
	if len(d.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = d.CORSOrigins
	}

	// Pre runs before routing so the gate sees, and rewrites, the raw path.
	e.Pre(middleware.RequestLog(d.Log))
	e.Pre(echomw.Recover())
	e.Pre(echomw.CORSWithConfig(corsCfg))
	e.Pre(gate.Middleware())

	e.Use(echomw.BodyLimit("2M"))
	if d.RateLimit != nil {
		e.Use(d.RateLimit)
	}

	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(d.Auth))
	RegisterUsers(e, handler.NewUserHandler(d.Auth, d.Users))
	RegisterProducts(e, handler.NewProductHandler(d.Products), d.Cache)
	RegisterOrders(e, handler.NewOrderHandler(d.Orders))
	if d.Signer != nil {
		RegisterMedia(e, handler.NewMediaHandler(d.Signer))
	}
	return e
}
