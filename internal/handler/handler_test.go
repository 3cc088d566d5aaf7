package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"authgate/internal/apperror"
	"authgate/internal/middleware"
	"authgate/internal/model"
	"authgate/internal/permission"
	"authgate/internal/principal"
	"authgate/internal/service"
	"authgate/pkg/response"

	"github.com/gin-gonic/gin"
)

type stubAuthService struct {
	sellers  map[string]*principal.Seller
	profiles map[string]*service.ProfileResponse
}

func (s *stubAuthService) Login(_ context.Context, email, plain, _ string) (*service.LoginResponse, error) {
	switch {
	case email == "a@x.com" && plain == "secret":
		return &service.LoginResponse{Token: "good", TokenType: "Bearer", Seller: service.TokenClaimsResponse{
			SubjectID: "s1", Permissions: []string{"orders", "products"},
		}}, nil
	case email == "flood@x.com":
		return nil, apperror.RateLimited("too many login attempts, try again later")
	default:
		return nil, apperror.Authentication("invalid email or password")
	}
}

func (s *stubAuthService) Authenticate(_ context.Context, token string) (*principal.Seller, error) {
	seller, ok := s.sellers[token]
	if !ok {
		return nil, apperror.InvalidToken("invalid token", nil)
	}
	return seller, nil
}

func (s *stubAuthService) Profile(_ context.Context, sellerID string) (*service.ProfileResponse, error) {
	p, ok := s.profiles[sellerID]
	if !ok {
		return nil, apperror.NotFound("seller not found")
	}
	return p, nil
}

func (s *stubAuthService) Refresh(ctx context.Context, token string) (*service.LoginResponse, error) {
	if _, err := s.Authenticate(ctx, token); err != nil {
		return nil, err
	}
	return &service.LoginResponse{Token: "fresh", TokenType: "Bearer"}, nil
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := &stubAuthService{
		sellers: map[string]*principal.Seller{
			"good": {ID: "s1", TokenFormat: "current", Permissions: permission.NewSet("orders", "products")},
		},
		profiles: map[string]*service.ProfileResponse{
			"s1": {ID: "s1", Permissions: []string{"analytics"}},
		},
	}
	r := gin.New()
	NewAuthHandler(auth).RegisterRoutes(&r.RouterGroup)
	NewSellerHandler(middleware.NewSellerGuard(auth, nil, PublicSellerPaths...)).RegisterRoutes(&r.RouterGroup)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) response.Response {
	t.Helper()
	var env struct {
		response.Response
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env.Response
}

func TestLoginHandler(t *testing.T) {
	r := newAuthRouter()

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantError  string
	}{
		{"success", gin.H{"email": "a@x.com", "password": "secret"}, http.StatusOK, ""},
		{"wrong password", gin.H{"email": "a@x.com", "password": "wrong"}, http.StatusUnauthorized, "invalid email or password"},
		{"missing field", gin.H{"email": "a@x.com"}, http.StatusBadRequest, "Invalid request payload"},
		{"throttled", gin.H{"email": "flood@x.com", "password": "x"}, http.StatusTooManyRequests, "too many login attempts, try again later"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodPost, "/login", tt.body, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var data service.LoginResponse
			env := decode(t, rec, &data)
			if env.Error != tt.wantError {
				t.Fatalf("error = %q, want %q", env.Error, tt.wantError)
			}
			if tt.wantStatus == http.StatusOK && data.Token != "good" {
				t.Fatalf("token = %q", data.Token)
			}
		})
	}
}

func TestGetMeReportsStaleToken(t *testing.T) {
	r := newAuthRouter()

	rec := doJSON(t, r, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer good"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var me MeResponse
	decode(t, rec, &me)
	if !me.Stale || len(me.TokenPermissions) != 2 || me.Permissions[0] != "analytics" {
		t.Fatalf("unexpected /me payload %+v", me)
	}

	rec = doJSON(t, r, http.MethodGet, "/me", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer forged"})
	if env := decode(t, rec, nil); rec.Code != http.StatusUnauthorized || env.Error != "invalid token" {
		t.Fatalf("forged token: %d %q", rec.Code, env.Error)
	}
}

func TestRefreshAcceptsBodyToken(t *testing.T) {
	r := newAuthRouter()
	rec := doJSON(t, r, http.MethodPost, "/token/refresh", gin.H{"token": "good"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var data service.LoginResponse
	decode(t, rec, &data)
	if data.Token != "fresh" {
		t.Fatalf("token = %q", data.Token)
	}
}

func TestSellerServiceAccess(t *testing.T) {
	r := newAuthRouter()
	auth := map[string]string{"Authorization": "Bearer good"}

	if rec := doJSON(t, r, http.MethodGet, "/seller/services/products", nil, auth); rec.Code != http.StatusOK {
		t.Fatalf("products: %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodGet, "/seller/services/payouts", nil, auth); rec.Code != http.StatusForbidden {
		t.Fatalf("payouts: %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodGet, "/seller/services/orders", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", rec.Code)
	}
}

// stubRoleService overrides the calls these tests make; anything else panics.
type stubRoleService struct {
	service.AdminRoleService
	roles   map[string][]model.AdminRole
	removed []string
}

func (s *stubRoleService) GetRolesForUser(_ context.Context, userID string) ([]model.AdminRole, error) {
	return s.roles[userID], nil
}

func (s *stubRoleService) CreateRole(_ context.Context, _ principal.Admin, req service.CreateRoleRequest) (*service.RoleResponse, bool, error) {
	key := permission.NormalizeRoleKey(req.Name)
	if key == "" {
		return nil, false, apperror.Validation("role name must contain at least one letter or digit")
	}
	return &service.RoleResponse{RoleKey: key, RoleName: req.Name}, key != "existing", nil
}

func (s *stubRoleService) RemoveAssignment(_ context.Context, a principal.Admin, id string) error {
	if id == "last" && a.IsSelf("u1") {
		return apperror.Validation("cannot remove last login-enabled role")
	}
	s.removed = append(s.removed, id)
	return nil
}

func newAdminRouter(roles *stubRoleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.TrustedHeaderSession())
	admin := r.Group("/admin", middleware.AdminGuard("static-secret"))
	NewAdminRoleHandler(roles).RegisterRoutes(admin)
	return r
}

func TestAdminRoleHandlers(t *testing.T) {
	manager := []model.AdminRole{{Permissions: []string{permission.AdminRolesManage, permission.AdminRolesRead}}}
	roles := &stubRoleService{roles: map[string][]model.AdminRole{"u1": manager, "viewer": {{Permissions: []string{permission.AdminRolesRead}}}}}
	r := newAdminRouter(roles)
	asU1 := map[string]string{middleware.HeaderAdminUserID: "u1"}

	if rec := doJSON(t, r, http.MethodPost, "/admin/roles", gin.H{"name": "Warehouse Lead"}, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodPost, "/admin/roles", gin.H{"name": "Warehouse Lead"}, map[string]string{middleware.HeaderAdminUserID: "viewer"}); rec.Code != http.StatusForbidden {
		t.Fatalf("viewer create: %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodPost, "/admin/roles", gin.H{"name": "Warehouse Lead"}, asU1); rec.Code != http.StatusCreated {
		t.Fatalf("create: %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodPost, "/admin/roles", gin.H{"name": "Existing"}, asU1); rec.Code != http.StatusOK {
		t.Fatalf("upsert existing: %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodPost, "/admin/roles", gin.H{"name": "???"}, asU1); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty key: %d", rec.Code)
	}

	rec := doJSON(t, r, http.MethodDelete, "/admin/role-assignments/last", nil, asU1)
	if env := decode(t, rec, nil); rec.Code != http.StatusBadRequest || env.Error != "cannot remove last login-enabled role" {
		t.Fatalf("self removal: %d %q", rec.Code, env.Error)
	}
	rec = doJSON(t, r, http.MethodDelete, "/admin/role-assignments/last", nil, map[string]string{"Authorization": "Bearer static-secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("static bearer removal: %d", rec.Code)
	}
	if len(roles.removed) != 1 {
		t.Fatalf("removed = %v", roles.removed)
	}
}
