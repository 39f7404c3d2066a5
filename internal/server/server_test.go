package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coursedesk/coursedesk/internal/config"
	"github.com/coursedesk/coursedesk/internal/model"
	"github.com/coursedesk/coursedesk/internal/payment"
	"github.com/coursedesk/coursedesk/internal/service"
	"github.com/coursedesk/coursedesk/internal/store"
)

type testEnv struct {
	srv  *Server
	st   *store.Store
	auth *service.AuthService
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(store.DriverSQLite, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	authSvc := service.NewAuthService(st, "server-test-secret", time.Hour)
	coupons := service.NewCouponService(st)
	enrollments := service.NewEnrollmentService(st, coupons, payment.NewSandbox())

	cfg := config.Server{
		Host:            "127.0.0.1",
		Port:            8080,
		CORSOrigins:     []string{"*"},
		ShutdownTimeout: time.Second,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testEnv{
		srv:  New(cfg, st, authSvc, coupons, enrollments, logger),
		st:   st,
		auth: authSvc,
	}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) setupAdmin(t *testing.T) string {
	t.Helper()
	rec := e.request(t, "POST", "/api/v1/admin-auth/setup", "", map[string]string{
		"username": "root",
		"email":    "root@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("setup: got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode setup response: %v", err)
	}
	return resp.Token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestServer(t)

	if rec := env.request(t, "GET", "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz: got %d", rec.Code)
	}
	if rec := env.request(t, "GET", "/readyz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("readyz: got %d", rec.Code)
	}
	if rec := env.request(t, "GET", "/openapi.json", "", nil); rec.Code != http.StatusOK {
		t.Errorf("openapi.json: got %d", rec.Code)
	}
}

func TestSetupThenLoginFlow(t *testing.T) {
	env := newTestServer(t)
	env.setupAdmin(t)

	// Second setup conflicts.
	rec := env.request(t, "POST", "/api/v1/admin-auth/setup", "", map[string]string{
		"username": "again", "email": "again@example.com", "password": "password123",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("second setup: got %d, want 409", rec.Code)
	}

	rec = env.request(t, "POST", "/api/v1/admin-auth/login", "", map[string]string{
		"email": "root@example.com", "password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d: %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
	}
	decodeBody(t, rec, &login)
	if login.Token == "" || login.TokenType != "bearer" {
		t.Errorf("login response: %+v", login)
	}

	rec = env.request(t, "GET", "/api/v1/admin-auth/verify", login.Token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("verify: got %d", rec.Code)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestServer(t)
	env.setupAdmin(t)

	for _, body := range []map[string]string{
		{"email": "ghost@example.com", "password": "password123"},
		{"email": "root@example.com", "password": "wrong"},
	} {
		rec := env.request(t, "POST", "/api/v1/admin-auth/login", "", body)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("login %v: got %d, want 401", body, rec.Code)
		}
		var resp model.Response
		decodeBody(t, rec, &resp)
		if resp.Message != "Invalid credentials" {
			t.Errorf("message: got %q", resp.Message)
		}
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	env := newTestServer(t)

	cases := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/admin/courses"},
		{"POST", "/api/v1/admin/courses"},
		{"GET", "/api/v1/admin/coupons"},
		{"GET", "/api/v1/admin/enrollments"},
		{"GET", "/api/v1/admin-auth/verify"},
	}
	for _, tc := range cases {
		rec := env.request(t, tc.method, tc.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: got %d, want 401", tc.method, tc.path, rec.Code)
		}

		rec = env.request(t, tc.method, tc.path, "garbage-token", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s with garbage token: got %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}

func TestPermissionDenied(t *testing.T) {
	env := newTestServer(t)
	ctx := context.Background()

	// An admin holding only the enrollments permission.
	hash, err := env.auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	limited := &model.Admin{
		Username:     "limited",
		Email:        "limited@example.com",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Permissions:  model.Permissions{model.PermEnrollments},
		IsActive:     true,
	}
	if err := env.st.CreateAdmin(ctx, limited); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	token, err := env.auth.IssueToken(limited.ID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if rec := env.request(t, "GET", "/api/v1/admin/enrollments", token, nil); rec.Code != http.StatusOK {
		t.Errorf("enrollments with permission: got %d, want 200", rec.Code)
	}
	if rec := env.request(t, "GET", "/api/v1/admin/courses", token, nil); rec.Code != http.StatusForbidden {
		t.Errorf("courses without permission: got %d, want 403", rec.Code)
	}
}

func TestCourseLifecycleOverHTTP(t *testing.T) {
	env := newTestServer(t)
	token := env.setupAdmin(t)

	rec := env.request(t, "POST", "/api/v1/admin/courses", token, map[string]interface{}{
		"title":            "Options Basics",
		"price":            1000,
		"discounted_price": 800,
		"status":           "active",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create course: got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Course model.Course `json:"course"`
	}
	decodeBody(t, rec, &created)
	courseID := created.Course.ID
	if courseID == 0 {
		t.Fatal("expected course ID")
	}

	// Details upsert.
	rec = env.request(t, "PUT", fmt.Sprintf("/api/v1/admin/courses/%d/details", courseID), token, map[string]interface{}{
		"objectives":      "Understand options",
		"target_audience": "Traders",
		"prerequisites":   "None",
		"structure":       "10 lessons",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert details: got %d: %s", rec.Code, rec.Body.String())
	}

	// Public view includes the course and details.
	rec = env.request(t, "GET", fmt.Sprintf("/api/v1/courses/%d", courseID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public get: got %d", rec.Code)
	}
	var public struct {
		Course  model.Course         `json:"course"`
		Details *model.CourseDetails `json:"details"`
	}
	decodeBody(t, rec, &public)
	if public.Details == nil || public.Details.Objectives != "Understand options" {
		t.Errorf("details: %+v", public.Details)
	}

	// Full-document update can zero the price.
	rec = env.request(t, "PUT", fmt.Sprintf("/api/v1/admin/courses/%d", courseID), token, map[string]interface{}{
		"title":  "Options Basics",
		"price":  0,
		"status": "active",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: got %d: %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		Course model.Course `json:"course"`
	}
	decodeBody(t, rec, &updated)
	if updated.Course.Price != 0 {
		t.Errorf("price after zeroing update: got %v", updated.Course.Price)
	}

	// Delete, then the public view is gone.
	rec = env.request(t, "DELETE", fmt.Sprintf("/api/v1/admin/courses/%d", courseID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: got %d", rec.Code)
	}
	rec = env.request(t, "GET", fmt.Sprintf("/api/v1/courses/%d", courseID), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("public get after delete: got %d, want 404", rec.Code)
	}
}

func TestPublicListHidesInactiveCourses(t *testing.T) {
	env := newTestServer(t)
	token := env.setupAdmin(t)

	env.request(t, "POST", "/api/v1/admin/courses", token, map[string]interface{}{
		"title": "Live", "price": 100, "status": "active",
	})
	env.request(t, "POST", "/api/v1/admin/courses", token, map[string]interface{}{
		"title": "Draft", "price": 100, "status": "inactive",
	})

	var public model.ListResponse
	rec := env.request(t, "GET", "/api/v1/courses", "", nil)
	decodeBody(t, rec, &public)
	if len(public.Resource) != 1 {
		t.Errorf("public list: got %d courses, want 1", len(public.Resource))
	}

	var admin model.ListResponse
	rec = env.request(t, "GET", "/api/v1/admin/courses", token, nil)
	decodeBody(t, rec, &admin)
	if len(admin.Resource) != 2 {
		t.Errorf("admin list: got %d courses, want 2", len(admin.Resource))
	}
}

func TestCouponValidateOverHTTP(t *testing.T) {
	env := newTestServer(t)
	token := env.setupAdmin(t)

	rec := env.request(t, "POST", "/api/v1/admin/coupons", token, map[string]interface{}{
		"code": "SAVE20", "kind": "percent", "value": 20,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create coupon: got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.request(t, "POST", "/api/v1/coupons/validate", "", map[string]interface{}{
		"code": "save20", "amount": 800,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("validate: got %d: %s", rec.Code, rec.Body.String())
	}
	var quote struct {
		Discount    float64 `json:"discount"`
		FinalAmount float64 `json:"final_amount"`
	}
	decodeBody(t, rec, &quote)
	if quote.Discount != 160 || quote.FinalAmount != 640 {
		t.Errorf("quote: %+v", quote)
	}

	// Unknown code answers 400 with the rejection reason.
	rec = env.request(t, "POST", "/api/v1/coupons/validate", "", map[string]interface{}{
		"code": "NOPE", "amount": 800,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown coupon: got %d, want 400", rec.Code)
	}
	var resp model.Response
	decodeBody(t, rec, &resp)
	if resp.Message != "invalid coupon code" {
		t.Errorf("message: got %q", resp.Message)
	}
}

func TestEnrollmentAndPaymentOverHTTP(t *testing.T) {
	env := newTestServer(t)
	token := env.setupAdmin(t)

	rec := env.request(t, "POST", "/api/v1/admin/courses", token, map[string]interface{}{
		"title": "Paid Course", "price": 640, "status": "active",
	})
	var created struct {
		Course model.Course `json:"course"`
	}
	decodeBody(t, rec, &created)
	courseID := created.Course.ID

	// Order handshake against the sandbox provider.
	rec = env.request(t, "POST", "/api/v1/payments/create-order", "", map[string]interface{}{
		"course_id": courseID, "email": "buyer@example.com",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: got %d: %s", rec.Code, rec.Body.String())
	}
	var order struct {
		OrderID  string  `json:"order_id"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		KeyID    string  `json:"key_id"`
	}
	decodeBody(t, rec, &order)
	if order.Amount != 640 || order.Currency != "INR" || order.KeyID == "" {
		t.Errorf("order: %+v", order)
	}

	rec = env.request(t, "POST", "/api/v1/payments/verify", "", map[string]interface{}{
		"order_id": order.OrderID, "payment_id": "pay_1", "signature": "ok",
		"email": "buyer@example.com", "name": "Buyer",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: got %d: %s", rec.Code, rec.Body.String())
	}

	// Verifying an unknown order answers 404.
	rec = env.request(t, "POST", "/api/v1/payments/verify", "", map[string]interface{}{
		"order_id": "order_missing", "payment_id": "pay_2", "signature": "ok",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown order: got %d, want 404", rec.Code)
	}

	// The enrollment shows up in the admin listing.
	rec = env.request(t, "GET", fmt.Sprintf("/api/v1/admin/enrollments?course_id=%d", courseID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list enrollments: got %d", rec.Code)
	}
	var list model.ListResponse
	decodeBody(t, rec, &list)
	if len(list.Resource) != 1 {
		t.Errorf("enrollments: got %d, want 1", len(list.Resource))
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestServer(t)

	rec := env.request(t, "GET", "/healthz", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}
