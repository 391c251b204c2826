package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ecommerce-api/model"
	"ecommerce-api/service"
)

// fakeService overrides only what a test sets; anything else panics through
// the nil embedded interface.
type fakeService struct {
	service.ServiceInterface

	createProduct  func(ctx context.Context, in service.ProductInput) (model.Product, error)
	updateProduct  func(ctx context.Context, id string, up service.ProductUpdate) (model.Product, error)
	getProduct     func(ctx context.Context, id string) (model.Product, error)
	searchProducts func(ctx context.Context, f model.ProductFilter) (service.SearchResult, error)
	placeOrder     func(ctx context.Context, in service.OrderInput) (model.Order, error)
	myOrders       func(ctx context.Context, userID string) ([]model.Order, error)
	createUser     func(ctx context.Context, in service.UserInput) (model.User, bool, error)
	applyDiscount  func(ctx context.Context, code string) (decimal.Decimal, error)
}

func (f *fakeService) CreateProduct(ctx context.Context, in service.ProductInput) (model.Product, error) {
	return f.createProduct(ctx, in)
}

func (f *fakeService) UpdateProduct(ctx context.Context, id string, up service.ProductUpdate) (model.Product, error) {
	return f.updateProduct(ctx, id, up)
}

func (f *fakeService) GetProduct(ctx context.Context, id string) (model.Product, error) {
	return f.getProduct(ctx, id)
}

func (f *fakeService) SearchProducts(ctx context.Context, fl model.ProductFilter) (service.SearchResult, error) {
	return f.searchProducts(ctx, fl)
}

func (f *fakeService) PlaceOrder(ctx context.Context, in service.OrderInput) (model.Order, error) {
	return f.placeOrder(ctx, in)
}

func (f *fakeService) MyOrders(ctx context.Context, userID string) ([]model.Order, error) {
	return f.myOrders(ctx, userID)
}

func (f *fakeService) CreateUser(ctx context.Context, in service.UserInput) (model.User, bool, error) {
	return f.createUser(ctx, in)
}

func (f *fakeService) ApplyDiscount(ctx context.Context, code string) (decimal.Decimal, error) {
	return f.applyDiscount(ctx, code)
}

type pingFunc func(ctx context.Context) error

func (p pingFunc) Ping(ctx context.Context) error { return p(ctx) }

func newRouter(t *testing.T, svc service.ServiceInterface, checks map[string]Pinger) http.Handler {
	t.Helper()
	h := NewHandler(svc, Options{Log: zerolog.Nop(), UploadDir: t.TempDir(), Checks: checks})
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return h.Wrap(r)
}

func do(t *testing.T, srv http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	var body map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body %q: %v", rec.Body.String(), err)
		}
	}
	return rec, body
}

func TestErrorKindsMapToStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{&service.Error{Kind: service.ErrValidation, Msg: "bad"}, http.StatusBadRequest, "bad"},
		{&service.Error{Kind: service.ErrNotFound, Msg: "product not found"}, http.StatusNotFound, "product not found"},
		{&service.Error{Kind: service.ErrUpstream, Msg: "load product", Err: errors.New("conn refused")}, http.StatusInternalServerError, "load product"},
		{errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, c := range cases {
		svc := &fakeService{getProduct: func(context.Context, string) (model.Product, error) {
			return model.Product{}, c.err
		}}
		rec, body := do(t, newRouter(t, svc, nil), httptest.NewRequest("GET", "/api/v1/product/p1", nil))
		if rec.Code != c.code {
			t.Fatalf("%v: expected %d, got %d", c.err, c.code, rec.Code)
		}
		if body["success"] != false || body["message"] != c.msg {
			t.Fatalf("%v: unexpected body %v", c.err, body)
		}
		if strings.Contains(rec.Body.String(), "conn refused") {
			t.Fatalf("upstream cause leaked to client")
		}
	}
}

func TestGetProduct_PathAndEnvelope(t *testing.T) {
	var gotID string
	svc := &fakeService{getProduct: func(_ context.Context, id string) (model.Product, error) {
		gotID = id
		return model.Product{ID: id, Name: "pen"}, nil
	}}
	rec, body := do(t, newRouter(t, svc, nil), httptest.NewRequest("GET", "/api/v1/product/p42", nil))
	if rec.Code != http.StatusOK || gotID != "p42" {
		t.Fatalf("expected 200 for p42, got %d (%q)", rec.Code, gotID)
	}
	if body["success"] != true {
		t.Fatalf("expected success envelope, got %v", body)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestSearchProducts_QueryParsing(t *testing.T) {
	var got model.ProductFilter
	svc := &fakeService{searchProducts: func(_ context.Context, f model.ProductFilter) (service.SearchResult, error) {
		got = f
		return service.SearchResult{TotalPage: 3}, nil
	}}
	srv := newRouter(t, svc, nil)

	rec, body := do(t, srv, httptest.NewRequest("GET", "/api/v1/product/all?search=pen&price=100&category=office&sort=asc&page=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Search != "pen" || got.Category != "office" || got.Sort != "asc" || got.Page != 2 || !got.MaxPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected filter: %+v", got)
	}
	if body["totalPage"] != float64(3) {
		t.Fatalf("expected totalPage 3, got %v", body["totalPage"])
	}

	rec, _ = do(t, srv, httptest.NewRequest("GET", "/api/v1/product/all", nil))
	if rec.Code != http.StatusOK || got.Page != 1 {
		t.Fatalf("expected default page 1, got %d", got.Page)
	}

	for _, q := range []string{"page=0", "page=x", "price=cheap"} {
		rec, _ = do(t, srv, httptest.NewRequest("GET", "/api/v1/product/all?"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}

func multipartRequest(t *testing.T, method, url string, fields map[string]string, photo string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if photo != "" {
		fw, err := mw.CreateFormFile("photo", photo)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write([]byte("img"))
	}
	mw.Close()
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestNewProduct_Multipart(t *testing.T) {
	var got service.ProductInput
	svc := &fakeService{createProduct: func(_ context.Context, in service.ProductInput) (model.Product, error) {
		got = in
		return model.Product{ID: "p1", Name: in.Name}, nil
	}}
	srv := newRouter(t, svc, nil)

	req := multipartRequest(t, "POST", "/api/v1/product/new", map[string]string{
		"name": "Pen", "category": "Office", "price": "12.50", "stock": "3",
	}, "pen.png")
	rec, _ := do(t, srv, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.Name != "Pen" || got.Stock != 3 || !got.Price.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("unexpected input: %+v", got)
	}
	if !strings.HasSuffix(got.PhotoPath, "pen.png") {
		t.Fatalf("expected saved upload path, got %q", got.PhotoPath)
	}
	if _, err := os.Stat(got.PhotoPath); err != nil {
		t.Fatalf("upload not written: %v", err)
	}

	req = multipartRequest(t, "POST", "/api/v1/product/new", map[string]string{"price": "abc"}, "")
	rec, _ = do(t, srv, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad price, got %d", rec.Code)
	}
}

func TestUpdateProduct_OnlySetFields(t *testing.T) {
	var got service.ProductUpdate
	svc := &fakeService{updateProduct: func(_ context.Context, id string, up service.ProductUpdate) (model.Product, error) {
		got = up
		return model.Product{ID: id}, nil
	}}
	req := multipartRequest(t, "PUT", "/api/v1/product/p1", map[string]string{"stock": "0"}, "")
	rec, _ := do(t, newRouter(t, svc, nil), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Stock == nil || *got.Stock != 0 {
		t.Fatalf("expected stock 0 to be set, got %+v", got)
	}
	if got.Name != nil || got.Price != nil || got.Category != nil || got.PhotoPath != "" {
		t.Fatalf("expected other fields unset, got %+v", got)
	}
}

func TestNewOrder(t *testing.T) {
	var got service.OrderInput
	svc := &fakeService{placeOrder: func(_ context.Context, in service.OrderInput) (model.Order, error) {
		got = in
		return model.Order{ID: "o1", User: in.User, Status: model.StatusProcessing}, nil
	}}
	srv := newRouter(t, svc, nil)

	body := `{"user":"u1","shippingInfo":{"address":"a","city":"c","state":"s","country":"in","pinCode":"1"},
		"orderItems":[{"productId":"p1","quantity":2}],"subTotal":20,"tax":2,"shippingCharges":5,"discount":0,"total":22}`
	rec, resp := do(t, srv, httptest.NewRequest("POST", "/api/v1/order/new", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.User != "u1" || len(got.Items) != 1 || got.Items[0].ProductID != "p1" || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", got)
	}
	if got.ShippingInfo.PinCode != "1" || !got.SubTotal.Equal(decimal.NewFromInt(20)) ||
		!got.ShippingCharges.Equal(decimal.NewFromInt(5)) || !got.Total.Equal(decimal.NewFromInt(22)) {
		t.Fatalf("camelCase fields not decoded: %+v", got)
	}
	order, _ := resp["order"].(map[string]interface{})
	for _, k := range []string{"shippingInfo", "orderItems", "subTotal", "shippingCharges", "createdAt"} {
		if _, ok := order[k]; !ok {
			t.Fatalf("expected %q in order response, got %v", k, order)
		}
	}

	rec, resp = do(t, srv, httptest.NewRequest("POST", "/api/v1/order/new", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest || resp["message"] != "invalid json" {
		t.Fatalf("expected invalid json, got %d %v", rec.Code, resp)
	}
}

func TestStaticRoutesBeatIDRoutes(t *testing.T) {
	var user string
	svc := &fakeService{myOrders: func(_ context.Context, id string) ([]model.Order, error) {
		user = id
		return []model.Order{}, nil
	}}
	rec, _ := do(t, newRouter(t, svc, nil), httptest.NewRequest("GET", "/api/v1/order/my?id=u7", nil))
	if rec.Code != http.StatusOK || user != "u7" {
		t.Fatalf("expected my-orders for u7, got %d %q", rec.Code, user)
	}
}

func TestNewUser_CreatedAndExisting(t *testing.T) {
	created := true
	var got service.UserInput
	svc := &fakeService{createUser: func(_ context.Context, in service.UserInput) (model.User, bool, error) {
		got = in
		return model.User{ID: in.ID, Name: in.Name}, created, nil
	}}
	srv := newRouter(t, svc, nil)
	body := `{"id":"u1","name":"Ann","email":"ann@example.com","photo":"p","gender":"female","dob":"1990-05-01"}`

	rec, resp := do(t, srv, httptest.NewRequest("POST", "/api/v1/user/new", strings.NewReader(body)))
	if rec.Code != http.StatusCreated || resp["message"] != "Welcome, Ann" {
		t.Fatalf("unexpected response %d %v", rec.Code, resp)
	}
	if got.DOB.Year() != 1990 {
		t.Fatalf("dob not parsed: %v", got.DOB)
	}

	created = false
	rec, resp = do(t, srv, httptest.NewRequest("POST", "/api/v1/user/new", strings.NewReader(body)))
	if rec.Code != http.StatusOK || resp["message"] != "Welcome back, Ann" {
		t.Fatalf("unexpected response %d %v", rec.Code, resp)
	}

	bad := strings.Replace(body, "1990-05-01", "May 1st", 1)
	rec, _ = do(t, srv, httptest.NewRequest("POST", "/api/v1/user/new", strings.NewReader(bad)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad dob, got %d", rec.Code)
	}
}

func TestApplyDiscount(t *testing.T) {
	svc := &fakeService{applyDiscount: func(_ context.Context, code string) (decimal.Decimal, error) {
		if code != "SAVE10" {
			return decimal.Zero, &service.Error{Kind: service.ErrNotFound, Msg: "invalid coupon code"}
		}
		return decimal.NewFromInt(10), nil
	}}
	srv := newRouter(t, svc, nil)

	rec, body := do(t, srv, httptest.NewRequest("GET", "/api/v1/payment/discount?coupon=SAVE10", nil))
	if rec.Code != http.StatusOK || body["discount"] != "10" {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}
	rec, _ = do(t, srv, httptest.NewRequest("GET", "/api/v1/payment/discount?coupon=NOPE", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealthAndCORS(t *testing.T) {
	checks := map[string]Pinger{
		"store": pingFunc(func(context.Context) error { return nil }),
	}
	srv := newRouter(t, &fakeService{}, checks)
	rec, body := do(t, srv, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("expected healthy, got %d %v", rec.Code, body)
	}

	checks["cache"] = pingFunc(func(context.Context) error { return errors.New("down") })
	rec, _ = do(t, srv, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	pre := httptest.NewRequest("OPTIONS", "/api/v1/product/new", nil)
	pre.Header.Set("Origin", "http://shop.example")
	pre.Header.Set("Access-Control-Request-Method", "POST")
	rec, _ = do(t, srv, pre)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected preflight response, got %d %v", rec.Code, rec.Header())
	}

	rec, body = do(t, srv, httptest.NewRequest("GET", "/api/v1/nope", nil))
	if rec.Code != http.StatusNotFound || body["success"] != false {
		t.Fatalf("expected 404 envelope, got %d %v", rec.Code, body)
	}
}

func TestPanicIsRecovered(t *testing.T) {
	// getProduct is unset, so the handler panics on a nil func
	srv := newRouter(t, &fakeService{}, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/product/p1", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after a panic, got %d", rec.Code)
	}

	// the server keeps serving
	rec, _ = do(t, srv, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after recovery, got %d", rec.Code)
	}
}
