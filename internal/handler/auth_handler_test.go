package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/johernandezvaz/vitrine/internal/auth"
	"github.com/johernandezvaz/vitrine/internal/middleware"
	"github.com/johernandezvaz/vitrine/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	loginFn    func(ctx context.Context, identifier, password string) (string, *model.User, error)
	registerFn func(ctx context.Context, name, email, password string, role model.Role) (*model.User, error)
	logoutFn   func(ctx context.Context, claims *auth.Claims) error
}

func (m *mockAuthService) Login(ctx context.Context, identifier, password string) (string, *model.User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, identifier, password)
	}
	return "", nil, nil
}

func (m *mockAuthService) Register(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, name, email, password, role)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, claims)
	}
	return nil
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

// --- ヘルパー ---

func withClaims(t *testing.T, req *http.Request) *http.Request {
	t.Helper()
	codec := auth.NewTokenCodec([]byte("test-secret"), time.Hour)
	token, err := codec.Encode(auth.Claims{UserID: 42, Name: "alice", Role: "client"})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("failed to decode token: %v", err)
	}
	return req.WithContext(middleware.ContextWithClaims(req.Context(), claims))
}

func decodeErrorResponse(t *testing.T, w *httptest.ResponseRecorder) apiErrorResponse {
	t.Helper()
	var body apiErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

// --- POST /api/login テスト ---

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, identifier, password string) (string, *model.User, error) {
			if identifier != "alice@example.com" {
				t.Errorf("identifier = %q, want %q", identifier, "alice@example.com")
			}
			return "signed-token", &model.User{ID: 1, Name: "alice", Role: model.RoleClient}, nil
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"identifier":"alice@example.com","password":"secret"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var body loginResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.AccessToken != "signed-token" {
		t.Errorf("access_token = %q, want %q", body.AccessToken, "signed-token")
	}
	if body.User.ID != 1 || body.User.Role != "client" {
		t.Errorf("user = %+v, want {ID: 1, Role: client}", body.User)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, identifier, password string) (string, *model.User, error) {
			return "", nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"identifier":"alice@example.com","password":"wrong"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
	if body := decodeErrorResponse(t, w); body.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidCredentials)
	}
}

func TestAuthHandler_Login_MalformedBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"identifier":"alice@example.com"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestAuthHandler_Login_StoreUnavailable(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, identifier, password string) (string, *model.User, error) {
			return "", nil, model.NewStoreUnavailableError()
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"identifier":"alice@example.com","password":"secret"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Result().StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusServiceUnavailable)
	}
}

// --- POST /api/register テスト ---

func TestAuthHandler_Register_Success(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
			if role != model.RoleClient {
				t.Errorf("role = %q, want %q", role, model.RoleClient)
			}
			return &model.User{ID: 7, Name: name, Email: email, Role: role}, nil
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"name":"bob","email":"bob@example.com","password":"pw","role":"client"}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Result().StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusCreated)
	}

	var body struct {
		User userResponse `json:"user"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.User.ID != 7 || body.User.Email != "bob@example.com" {
		t.Errorf("user = %+v, want {ID: 7, Email: bob@example.com}", body.User)
	}
}

// role省略時はclientとして扱われること
func TestAuthHandler_Register_DefaultRoleIsClient(t *testing.T) {
	var gotRole model.Role
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
			gotRole = role
			return &model.User{ID: 1, Name: name, Email: email, Role: role}, nil
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"name":"bob","email":"bob@example.com","password":"pw"}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if gotRole != model.RoleClient {
		t.Errorf("role = %q, want %q", gotRole, model.RoleClient)
	}
}

func TestAuthHandler_Register_ForbiddenRole(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
			return nil, model.NewForbiddenRoleError()
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"name":"eve","email":"eve@example.com","password":"pw","role":"provider"}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
			return nil, model.NewDuplicateEmailError()
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"name":"bob","email":"bob@example.com","password":"pw"}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Result().StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusConflict)
	}
	if body := decodeErrorResponse(t, w); body.Code != model.ErrCodeDuplicateEmail {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeDuplicateEmail)
	}
}

func TestAuthHandler_Register_UnknownRole(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"name":"bob","email":"bob@example.com","password":"pw","role":"admin"}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

// --- POST /api/logout テスト ---

func TestAuthHandler_Logout_Success(t *testing.T) {
	logoutCalled := false
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, claims *auth.Claims) error {
			logoutCalled = true
			if claims.UserID != 42 {
				t.Errorf("claims.UserID = %d, want 42", claims.UserID)
			}
			return nil
		},
	}
	h := NewAuthHandler(svc)

	req := withClaims(t, httptest.NewRequest(http.MethodPost, "/api/logout", nil))
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if !logoutCalled {
		t.Error("expected Logout to be called")
	}
}

func TestAuthHandler_Logout_NoClaims_ReturnsUnauthorized(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// --- POST /api/verify-token テスト ---

func TestAuthHandler_VerifyToken_ReturnsClaims(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := withClaims(t, httptest.NewRequest(http.MethodPost, "/api/verify-token", nil))
	w := httptest.NewRecorder()

	h.VerifyToken(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var body struct {
		Valid bool         `json:"valid"`
		User  userResponse `json:"user"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Valid {
		t.Error("valid = false, want true")
	}
	if body.User.ID != 42 || body.User.Name != "alice" {
		t.Errorf("user = %+v, want {ID: 42, Name: alice}", body.User)
	}
}

// --- GET /api/dashboard テスト ---

func TestAuthHandler_Dashboard_ReturnsUserInfo(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := withClaims(t, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	w := httptest.NewRecorder()

	h.Dashboard(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var body struct {
		User userResponse `json:"user"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.User.ID != 42 || body.User.Role != "client" {
		t.Errorf("user = %+v, want {ID: 42, Role: client}", body.User)
	}
}
