package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/distributor-orders/internal/service"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{&service.ValidationError{Msg: "name is required"}, 400, "name is required"},
		{fmt.Errorf("user %w", service.ErrNotFound), 404, "user not found"},
		{fmt.Errorf("phone or email %w", service.ErrConflict), 409, "phone or email already in use"},
		{service.ErrInvalidCredentials, 401, "invalid credentials"},
		{service.ErrTokenExpired, 401, "refresh token expired"},
		{service.ErrTokenMismatch, 401, "invalid refresh token"},
		{service.ErrForbidden, 403, "forbidden"},
		{echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), 405, "Method Not Allowed"},
		{echo.NewHTTPError(http.StatusBadGateway, "upstream said secret things"), 502, "Bad Gateway"},
		{errors.New("dial tcp 10.0.0.5:27017: connection refused"), 500, "internal server error"},
	}
	for _, tc := range cases {
		status, msg := classify(tc.err)
		if status != tc.status || msg != tc.msg {
			t.Errorf("classify(%v) = %d %q, want %d %q", tc.err, status, msg, tc.status, tc.msg)
		}
	}
}

func TestErrorHandlerHidesInternals(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(zap.NewNop().Sugar())(errors.New("mongo: no reachable servers"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", rec.Code)
	}
	if rec.Body.String() != "{\"error\":\"internal server error\"}\n" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}
