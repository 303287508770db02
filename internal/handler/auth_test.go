package handler

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"miro-content-service/internal/auth"
	"miro-content-service/internal/middleware"
	"miro-content-service/internal/model"
	"miro-content-service/internal/repository"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := repository.NewDocStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open doc store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	err = store.PutAdmin(model.Admin{
		AdminID:  1,
		Username: "admin",
		Password: auth.HashAdminPassword("correct-horse"),
	})
	if err != nil {
		t.Fatal(err)
	}

	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	h := NewAuthHandler(store, issuer, false)

	r := gin.New()
	r.POST("/api/auth/login", h.Login)
	r.GET("/api/auth/check", h.Check)
	r.POST("/api/auth/logout", h.Logout)

	protected := r.Group("/api")
	protected.Use(middleware.AdminAuth(issuer))
	protected.GET("/secret", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func authTokenCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.AdminCookieName {
			return cookie
		}
	}
	t.Fatal("no auth_token cookie in response")
	return nil
}

func TestAdminLoginSuccess(t *testing.T) {
	r := newAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "admin", "password": "correct-horse"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status: got %d (%s)", w.Code, w.Body.String())
	}

	cookie := authTokenCookie(t, w)
	if cookie.Value == "" {
		t.Fatal("empty token cookie")
	}
	if !cookie.HttpOnly {
		t.Error("cookie must be httpOnly")
	}
	if cookie.Path != "/" {
		t.Errorf("cookie path: got %q, want /", cookie.Path)
	}
	if cookie.MaxAge != 3600 {
		t.Errorf("cookie max-age: got %d, want 3600", cookie.MaxAge)
	}

	// The cookie authenticates the check endpoint.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("check status: got %d (%s)", rec.Code, rec.Body.String())
	}

	// And the guarded group.
	req = httptest.NewRequest(http.MethodGet, "/api/secret", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("guarded route: got %d, want 200", rec.Code)
	}
}

func TestAdminLoginRejections(t *testing.T) {
	r := newAuthRouter(t)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"missing credentials", map[string]string{}, http.StatusBadRequest},
		{"unknown user", map[string]string{"username": "nobody", "password": "x"}, http.StatusUnauthorized},
		{"wrong password", map[string]string{"username": "admin", "password": "wrong"}, http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/auth/login", tc.body)
			if w.Code != tc.want {
				t.Errorf("got %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestAdminCheckWithoutToken(t *testing.T) {
	r := newAuthRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/auth/check", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("got %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(&http.Cookie{Name: auth.AdminCookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: got %d, want 401", rec.Code)
	}
}

func TestAdminGuardWithoutToken(t *testing.T) {
	r := newAuthRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/secret", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("got %d, want 401", w.Code)
	}
}

func TestAdminLogoutExpiresCookie(t *testing.T) {
	r := newAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/logout", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status: got %d", w.Code)
	}

	cookie := authTokenCookie(t, w)
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("cookie not expired: value=%q maxAge=%d", cookie.Value, cookie.MaxAge)
	}
}
