package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"miro-content-service/internal/auth"
	"miro-content-service/internal/model"
	"miro-content-service/internal/repository"
	"miro-content-service/internal/service"

	"github.com/gin-gonic/gin"
)

// memUserStore keeps accounts in a map, keyed by id
type memUserStore struct {
	users map[string]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]model.User)}
}

func (s *memUserStore) Create(_ context.Context, u model.User) error {
	s.users[u.ID] = u
	return nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (s *memUserStore) GetByVerificationToken(_ context.Context, token string) (*model.User, error) {
	for _, u := range s.users {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUserStore) UpdateVerificationToken(_ context.Context, id, token string) error {
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.VerificationToken = &token
	s.users[id] = u
	return nil
}

func (s *memUserStore) MarkVerified(_ context.Context, id string) error {
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	now := time.Now()
	u.EmailVerified = &now
	u.VerificationToken = nil
	s.users[id] = u
	return nil
}

// memSessionStore is an in-memory stand-in for the Redis session store
type memSessionStore struct {
	sessions map[string]string
	next     int
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]string)}
}

func (s *memSessionStore) Create(_ context.Context, userID string) (string, error) {
	s.next++
	token := "tok-" + strconv.Itoa(s.next)
	s.sessions[token] = userID
	return token, nil
}

func (s *memSessionStore) Resolve(_ context.Context, token string) (string, error) {
	userID, ok := s.sessions[token]
	if !ok {
		return "", repository.ErrSessionNotFound
	}
	return userID, nil
}

func (s *memSessionStore) Destroy(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

func newUsersRouter(users *memUserStore, sessions *memSessionStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	mailer := service.NewMailer("http://mail.invalid", "", "noreply@example.com", "http://localhost:8080")
	h := NewUsersHandler(users, sessions, mailer, time.Hour, false)

	r := gin.New()
	r.POST("/api/users/register", h.Register)
	r.POST("/api/users/login", h.Login)
	r.POST("/api/users/logout", h.Logout)
	r.GET("/api/users/me", h.Me)
	r.POST("/api/users/resend-verification", h.ResendVerification)
	r.POST("/api/users/check-verification", h.CheckVerification)
	r.GET("/api/verify-email", h.VerifyEmail)
	return r
}

func doJSONWithCookie(t *testing.T, r *gin.Engine, method, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func verifiedUser(t *testing.T, users *memUserStore, email, password string) model.User {
	t.Helper()
	hash, err := auth.HashUserPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	u := model.User{ID: "u-" + email, Email: email, PasswordHash: hash, EmailVerified: &now}
	users.users[u.ID] = u
	return u
}

func TestResendVerification(t *testing.T) {
	users := newMemUserStore()
	hash, err := auth.HashUserPassword("secret123")
	if err != nil {
		t.Fatal(err)
	}
	stale := "stale-token"
	users.users["u-1"] = model.User{ID: "u-1", Email: "new@example.com", PasswordHash: hash, VerificationToken: &stale}
	verifiedUser(t, users, "done@example.com", "secret123")

	r := newUsersRouter(users, newMemSessionStore())

	tests := []struct {
		name  string
		email string
		code  int
	}{
		{"missing email", "", http.StatusBadRequest},
		// Unknown addresses get the generic success so the endpoint
		// cannot be used to enumerate accounts.
		{"unknown email", "ghost@example.com", http.StatusOK},
		{"already verified", "done@example.com", http.StatusOK},
		{"pending user", "new@example.com", http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/users/resend-verification", gin.H{"email": tc.email})
			if w.Code != tc.code {
				t.Fatalf("status = %d, want %d", w.Code, tc.code)
			}
		})
	}

	if tok := users.users["u-1"].VerificationToken; tok == nil || *tok == stale {
		t.Error("pending user must receive a fresh verification token")
	}
}

func TestCheckVerification(t *testing.T) {
	users := newMemUserStore()
	users.users["u-1"] = model.User{ID: "u-1", Email: "pending@example.com", PasswordHash: "x"}
	verifiedUser(t, users, "done@example.com", "secret123")

	r := newUsersRouter(users, newMemSessionStore())

	tests := []struct {
		name     string
		email    string
		code     int
		exists   bool
		verified bool
	}{
		{"missing email", "", http.StatusBadRequest, false, false},
		{"unknown email", "ghost@example.com", http.StatusOK, false, false},
		{"pending email", "pending@example.com", http.StatusOK, true, false},
		{"verified email", "done@example.com", http.StatusOK, true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/users/check-verification", gin.H{"email": tc.email})
			if w.Code != tc.code {
				t.Fatalf("status = %d, want %d", w.Code, tc.code)
			}

			var body struct {
				Exists   bool `json:"exists"`
				Verified bool `json:"verified"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Exists != tc.exists || body.Verified != tc.verified {
				t.Errorf("got exists=%v verified=%v, want exists=%v verified=%v",
					body.Exists, body.Verified, tc.exists, tc.verified)
			}
		})
	}
}

func TestMe(t *testing.T) {
	users := newMemUserStore()
	sessions := newMemSessionStore()
	u := verifiedUser(t, users, "me@example.com", "secret123")
	r := newUsersRouter(users, sessions)

	login := doJSON(t, r, http.MethodPost, "/api/users/login", gin.H{
		"email":    "me@example.com",
		"password": "secret123",
	})
	if login.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", login.Code)
	}

	var session *http.Cookie
	for _, c := range login.Result().Cookies() {
		if c.Name == "session_token" {
			session = c
		}
	}
	if session == nil {
		t.Fatal("login must set the session cookie")
	}

	req := doJSON(t, r, http.MethodGet, "/api/users/me", nil)
	if req.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", req.Code)
	}

	w := doJSONWithCookie(t, r, http.MethodGet, "/api/users/me", session)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Status string `json:"status"`
		User   struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "success" || body.User.ID != u.ID || body.User.Email != u.Email {
		t.Errorf("got %+v", body)
	}
}

func TestMeAfterLogout(t *testing.T) {
	users := newMemUserStore()
	sessions := newMemSessionStore()
	verifiedUser(t, users, "me@example.com", "secret123")
	r := newUsersRouter(users, sessions)

	login := doJSON(t, r, http.MethodPost, "/api/users/login", gin.H{
		"email":    "me@example.com",
		"password": "secret123",
	})
	var session *http.Cookie
	for _, c := range login.Result().Cookies() {
		if c.Name == "session_token" {
			session = c
		}
	}
	if session == nil {
		t.Fatal("login must set the session cookie")
	}

	if w := doJSONWithCookie(t, r, http.MethodPost, "/api/users/logout", session); w.Code != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", w.Code)
	}

	if w := doJSONWithCookie(t, r, http.MethodGet, "/api/users/me", session); w.Code != http.StatusUnauthorized {
		t.Fatalf("status after logout = %d, want 401", w.Code)
	}
}
