package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/distributor-orders/internal/export"
	"github.com/iliyamo/distributor-orders/internal/media"
	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/repository/memory"
	"github.com/iliyamo/distributor-orders/internal/service"
	"github.com/iliyamo/distributor-orders/internal/utils"
	"github.com/iliyamo/distributor-orders/internal/validate"
)

type fakeSigner struct{}

func (fakeSigner) Sign() (media.UploadSignature, error) {
	return media.UploadSignature{Signature: "sig", Timestamp: 1700000000, CloudName: "demo", APIKey: "key", Folder: media.UploadFolder}, nil
}

type testApp struct {
	e      *echo.Echo
	auth   *service.AuthService
	tokens *utils.Tokens
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := memory.New()
	v := validate.New()
	tokens := utils.NewTokens("access-secret", "refresh-secret", time.Hour, 24*time.Hour, nil)
	auth := service.NewAuthService(store.Users, tokens, v, 4)
	e := New(Deps{
		Validator: v,
		Verifier:  tokens,
		Auth:      auth,
		Users:     service.NewUserService(store.Users, v, 4),
		Products:  service.NewProductService(store.Products, nil, nil, v, nil),
		Orders:    service.NewOrderService(store.Orders, nil, v, service.OrderOptions{TotalPolicy: service.TotalPolicyOff}, nil),
		Signer:    fakeSigner{},
	})
	return &testApp{e: e, auth: auth, tokens: tokens}
}

// user registers an account and returns its id and a bearer header value.
func (a *testApp) user(t *testing.T, phone string, role model.Role) (string, string) {
	t.Helper()
	u, err := a.auth.Register(context.Background(), service.RegisterInput{
		Name: "User " + phone, Phone: phone, Password: "secret1", Role: role,
	})
	if err != nil {
		t.Fatal(err)
	}
	tok, err := a.tokens.NewAccessToken(u.Identity())
	if err != nil {
		t.Fatal(err)
	}
	return u.ID, "Bearer " + tok.Token
}

func (a *testApp) do(method, target, bearer, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, bearer)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body %q is not JSON: %v", rec.Body.String(), err)
	}
	return body.Error
}

const orderBody = `{
	"customer": {"name": "Bilal Traders", "phone": "03001234567", "address": "Main Bazar", "city": "Multan"},
	"products": [{"productCode": "RICE-5", "title": "Rice", "price": "Rs. 1,200", "quantity": 2}],
	"total": 2400,
	"date": "2025-03-01T08:00:00Z",
	"orderType": "delivery"
}`

func TestDistributorOrderAccess(t *testing.T) {
	app := newTestApp(t)
	d1, d1Bearer := app.user(t, "03001111111", model.RoleDistributor)
	_, d2Bearer := app.user(t, "03002222222", model.RoleDistributor)

	for _, bearer := range []string{d1Bearer, d1Bearer, d2Bearer} {
		if rec := app.do(http.MethodPost, "/orders", bearer, orderBody); rec.Code != http.StatusCreated {
			t.Fatalf("place order: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec := app.do(http.MethodGet, "/orders", d1Bearer, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("distributor GET /orders = %d", rec.Code)
	}
	if msg := errorOf(t, rec); msg != "forbidden - role not allowed" {
		t.Fatalf("message = %q", msg)
	}

	rec = app.do(http.MethodGet, "/orders/my", d1Bearer, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /orders/my = %d %s", rec.Code, rec.Body.String())
	}
	var mine struct {
		Orders []model.Order `json:"orders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &mine); err != nil {
		t.Fatal(err)
	}
	if len(mine.Orders) != 2 {
		t.Fatalf("own orders = %d", len(mine.Orders))
	}
	for _, o := range mine.Orders {
		if o.UserID != d1 {
			t.Fatalf("foreign order in /orders/my: %+v", o)
		}
	}
}

func TestAdminOrderListingAndUpdates(t *testing.T) {
	app := newTestApp(t)
	_, adminBearer := app.user(t, "03009999999", model.RoleAdmin)
	_, distBearer := app.user(t, "03001111111", model.RoleDistributor)

	rec := app.do(http.MethodPost, "/orders", distBearer, orderBody)
	var placed model.Order
	_ = json.Unmarshal(rec.Body.Bytes(), &placed)

	rec = app.do(http.MethodGet, "/orders?page=1&limit=10", adminBearer, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin list = %d", rec.Code)
	}
	var page service.OrderPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Pages != 1 || page.Orders[0].ID != placed.ID {
		t.Fatalf("page = %+v", page)
	}

	rec = app.do(http.MethodPatch, "/orders/"+placed.ID+"/status", adminBearer, `{"status":"shipped"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"shipped"`) {
		t.Fatalf("status update = %d %s", rec.Code, rec.Body.String())
	}
	rec = app.do(http.MethodPatch, "/orders/"+placed.ID+"/type", adminBearer, `{"orderType":"bilti"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"orderType":"bilti"`) {
		t.Fatalf("type update = %d %s", rec.Code, rec.Body.String())
	}
	rec = app.do(http.MethodPatch, "/orders/"+placed.ID+"/status", distBearer, `{"status":"delivered"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("distributor status update = %d", rec.Code)
	}
	rec = app.do(http.MethodPatch, "/orders/missing/status", adminBearer, `{"status":"shipped"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing order = %d", rec.Code)
	}

	rec = app.do(http.MethodGet, "/orders/export", adminBearer, "")
	if rec.Code != http.StatusOK || rec.Header().Get(echo.HeaderContentType) != export.ContentType {
		t.Fatalf("export = %d %q", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}
}

func TestPlaceOrderErrors(t *testing.T) {
	app := newTestApp(t)
	_, bearer := app.user(t, "03001111111", model.RoleDistributor)

	rec := app.do(http.MethodPost, "/orders", "", orderBody)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d", rec.Code)
	}
	rec = app.do(http.MethodPost, "/orders", bearer, `{"products": []}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid order = %d", rec.Code)
	}
	rec = app.do(http.MethodPost, "/orders", bearer, `{not json`)
	if rec.Code != http.StatusBadRequest || errorOf(t, rec) != "invalid body" {
		t.Fatalf("bad json = %d %s", rec.Code, rec.Body.String())
	}
	rec = app.do(http.MethodDelete, "/orders", bearer, "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE /orders = %d", rec.Code)
	}
}

func TestLoginAndRefresh(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "03001111111", model.RoleDistributor)

	rec := app.do(http.MethodPost, "/auth/login", "", `{"phone":"03001111111","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d %s", rec.Code, rec.Body.String())
	}
	var login service.LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatal(err)
	}
	if login.Token == "" || login.RefreshToken == "" || login.User.Role != model.RoleDistributor {
		t.Fatalf("login = %+v", login)
	}

	cases := []struct {
		body   string
		status int
	}{
		{`{"phone":"03001111111"}`, http.StatusBadRequest},
		{`{"phone":"03007777777","password":"secret1"}`, http.StatusNotFound},
		{`{"phone":"03001111111","password":"wrong"}`, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		if rec := app.do(http.MethodPost, "/auth/login", "", tc.body); rec.Code != tc.status {
			t.Errorf("login %s = %d, want %d", tc.body, rec.Code, tc.status)
		}
	}

	rec = app.do(http.MethodPost, "/auth/refresh", "", `{"refreshToken":"`+login.RefreshToken+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh = %d %s", rec.Code, rec.Body.String())
	}
	rec = app.do(http.MethodPost, "/auth/refresh", "", `{"refreshToken":"`+login.RefreshToken+`"}`)
	if rec.Code != http.StatusUnauthorized || errorOf(t, rec) != "invalid refresh token" {
		t.Fatalf("reused refresh = %d %s", rec.Code, rec.Body.String())
	}
	rec = app.do(http.MethodPost, "/auth/refresh", "", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing refresh = %d", rec.Code)
	}
}

func TestUserRoutes(t *testing.T) {
	app := newTestApp(t)
	_, adminBearer := app.user(t, "03009999999", model.RoleAdmin)
	distID, distBearer := app.user(t, "03001111111", model.RoleDistributor)

	rec := app.do(http.MethodPost, "/users", adminBearer,
		`{"name":"New","phone":"03211234567","password":"short","role":"distributor"}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(errorOf(t, rec), "password") {
		t.Fatalf("short password = %d %s", rec.Code, rec.Body.String())
	}
	rec = app.do(http.MethodPost, "/users", adminBearer,
		`{"name":"New","phone":"03211234567","password":"`+strings.Repeat("p", 80)+`","role":"distributor"}`)
	if rec.Code != http.StatusBadRequest || errorOf(t, rec) != "password must be at most 72 bytes" {
		t.Fatalf("long password = %d %s", rec.Code, rec.Body.String())
	}
	rec = app.do(http.MethodPost, "/users", adminBearer,
		`{"name":"New","phone":"03211234567","password":"longenough","role":"distributor"}`)
	if rec.Code != http.StatusCreated || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("create = %d %s", rec.Code, rec.Body.String())
	}
	rec = app.do(http.MethodPost, "/users", adminBearer,
		`{"name":"Dup","phone":"03211234567","password":"longenough","role":"distributor"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate = %d", rec.Code)
	}

	if rec := app.do(http.MethodGet, "/users", distBearer, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("distributor list = %d", rec.Code)
	}
	rec = app.do(http.MethodGet, "/users", adminBearer, "")
	var users []model.User
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil || len(users) != 3 {
		t.Fatalf("list = %d users, %v", len(users), err)
	}
	if rec := app.do(http.MethodGet, "/users?id=nope", adminBearer, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get missing = %d", rec.Code)
	}

	rec = app.do(http.MethodPut, "/users?id="+distID, distBearer, `{"city":"Quetta"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"city":"Quetta"`) {
		t.Fatalf("self edit = %d %s", rec.Code, rec.Body.String())
	}
	rec = app.do(http.MethodPut, "/users?id="+distID, distBearer, `{"role":"admin"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("self promotion = %d", rec.Code)
	}
	rec = app.do(http.MethodPut, "/users", adminBearer, `{"city":"Quetta"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing id = %d", rec.Code)
	}

	if rec := app.do(http.MethodDelete, "/users?id="+distID, adminBearer, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete = %d", rec.Code)
	}
	if rec := app.do(http.MethodDelete, "/users?id="+distID, adminBearer, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("delete again = %d", rec.Code)
	}
}

func TestProductRoutes(t *testing.T) {
	app := newTestApp(t)
	_, adminBearer := app.user(t, "03009999999", model.RoleAdmin)
	_, distBearer := app.user(t, "03001111111", model.RoleDistributor)

	body := `{"productCode":"RICE-5","title_english":"Rice","desc_english":"Long grain","category_english":"Rice",
		"price_english":"Rs. 1,200","unit_english":"bag","title_urdu":"چاول","desc_urdu":"لمبا","category_urdu":"چاول",
		"price_urdu":"۱۲۰۰","unit_urdu":"تھیلا","image_link":"https://res.cloudinary.com/demo/image/upload/v1/products/r.jpg"}`

	if rec := app.do(http.MethodPost, "/products", distBearer, body); rec.Code != http.StatusForbidden {
		t.Fatalf("distributor create = %d", rec.Code)
	}
	rec := app.do(http.MethodPost, "/products", adminBearer, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body.String())
	}
	var p model.Product
	_ = json.Unmarshal(rec.Body.Bytes(), &p)
	if !p.Price.Fixed || p.Price.Amount.IntPart() != 1200 {
		t.Fatalf("price = %+v", p.Price)
	}

	rec = app.do(http.MethodGet, "/products?code=RICE-5", distBearer, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"title_urdu":"چاول"`) {
		t.Fatalf("by code = %d %s", rec.Code, rec.Body.String())
	}
	if rec := app.do(http.MethodGet, "/products/"+p.ID, distBearer, ""); rec.Code != http.StatusOK {
		t.Fatalf("get = %d", rec.Code)
	}
	rec = app.do(http.MethodPut, "/products/"+p.ID, adminBearer, `{"productCode":"OTHER"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code change = %d", rec.Code)
	}
	if rec := app.do(http.MethodDelete, "/products/"+p.ID, adminBearer, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete = %d", rec.Code)
	}
	if rec := app.do(http.MethodGet, "/products/"+p.ID, distBearer, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("after delete = %d", rec.Code)
	}
}

func TestPublicAndMiscRoutes(t *testing.T) {
	app := newTestApp(t)
	_, bearer := app.user(t, "03001111111", model.RoleDistributor)

	rec := app.do(http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatal("request id not set")
	}

	rec = app.do(http.MethodGet, "/nowhere", "", "")
	if rec.Code != http.StatusNotFound || errorOf(t, rec) == "" {
		t.Fatalf("unknown route = %d %s", rec.Code, rec.Body.String())
	}

	rec = app.do(http.MethodPost, "/cloudinary-signature", bearer, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"cloudName":"demo"`) {
		t.Fatalf("signature = %d %s", rec.Code, rec.Body.String())
	}
	if rec := app.do(http.MethodPost, "/cloudinary-signature", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unsigned signature request = %d", rec.Code)
	}
}
