package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"miro-content-service/internal/auth"
	"miro-content-service/internal/model"
	"miro-content-service/internal/repository"
	"miro-content-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// UserStore is the account access surface the handler needs.
// *repository.UserRepo implements it.
type UserStore interface {
	Create(ctx context.Context, u model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*model.User, error)
	UpdateVerificationToken(ctx context.Context, id, token string) error
	MarkVerified(ctx context.Context, id string) error
}

// SessionStore is the session access surface the handler needs.
// *repository.SessionStore implements it.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) error
}

// UsersHandler implements the end-user credential scheme: bcrypt
// passwords, Redis-backed sessions, email verification. Deliberately
// separate from the admin JWT flow.
type UsersHandler struct {
	users      UserStore
	sessions   SessionStore
	mailer     *service.Mailer
	sessionTTL time.Duration
	secure     bool
}

// NewUsersHandler creates a new UsersHandler
func NewUsersHandler(users UserStore, sessions SessionStore, mailer *service.Mailer, sessionTTL time.Duration, secure bool) *UsersHandler {
	return &UsersHandler{users: users, sessions: sessions, mailer: mailer, sessionTTL: sessionTTL, secure: secure}
}

// sessionCookieName picks the cookie name for the environment. Production
// uses the __Secure- prefix.
func (h *UsersHandler) sessionCookieName() string {
	if h.secure {
		return "__Secure-session_token"
	}
	return "session_token"
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register creates an account and dispatches the verification email
// POST /api/users/register
func (h *UsersHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "შეიყვანეთ ელფოსტა და პაროლი",
		})
		return
	}

	if _, err := h.users.GetByEmail(c.Request.Context(), req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"status":  "error",
			"message": "მომხმარებელი ამ ელფოსტით უკვე არსებობს",
		})
		return
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		log.Error().Err(err).Msg("user lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "სისტემური შეცდომა",
		})
		return
	}

	hash, err := auth.HashUserPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("password hash failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "სისტემური შეცდომა",
		})
		return
	}

	token := uuid.NewString()
	user := model.User{
		ID:                uuid.NewString(),
		Email:             req.Email,
		PasswordHash:      hash,
		VerificationToken: &token,
	}
	if req.Name != "" {
		user.Name = &req.Name
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		log.Error().Err(err).Msg("user create failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "რეგისტრაცია ვერ მოხერხდა",
		})
		return
	}

	if err := h.mailer.SendVerification(user.Email, token); err != nil {
		// The account exists; verification can be re-requested later.
		log.Warn().Err(err).Str("email", user.Email).Msg("verification mail failed")
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "გადაამოწმეთ ელფოსტა ანგარიშის გასააქტიურებლად",
	})
}

// Login authenticates a user and opens a session
// POST /api/users/login
func (h *UsersHandler) Login(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "შეიყვანეთ ელფოსტა და პაროლი",
		})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckUserPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "არასწორი ელფოსტა ან პაროლი",
		})
		return
	}

	if user.EmailVerified == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "ელფოსტა არ არის დადასტურებული",
		})
		return
	}

	token, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Msg("session create failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "სისტემური შეცდომა",
		})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessionCookieName(), token, int(h.sessionTTL.Seconds()), "/", "", h.secure, true)

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Logout destroys the session and clears the cookie
// POST /api/users/logout
func (h *UsersHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.sessionCookieName()); err == nil && token != "" {
		if err := h.sessions.Destroy(c.Request.Context(), token); err != nil {
			log.Warn().Err(err).Msg("session destroy failed")
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessionCookieName(), "", -1, "/", "", h.secure, true)

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type emailRequest struct {
	Email string `json:"email"`
}

// ResendVerification issues a fresh verification token and re-sends the
// mail. Unknown addresses get the same success response; the endpoint
// must not confirm which emails have accounts.
// POST /api/users/resend-verification
func (h *UsersHandler) ResendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "შეიყვანეთ ელფოსტა",
		})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			log.Error().Err(err).Msg("user lookup failed")
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "თუ ელფოსტა არსებობს, დადასტურების წერილი გაიგზავნა",
		})
		return
	}

	if user.EmailVerified != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "ელფოსტა უკვე დადასტურებულია",
		})
		return
	}

	token := uuid.NewString()
	if err := h.users.UpdateVerificationToken(c.Request.Context(), user.ID, token); err != nil {
		log.Error().Err(err).Str("user", user.ID).Msg("token update failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "წერილის გაგზავნა ვერ მოხერხდა",
		})
		return
	}

	if err := h.mailer.SendVerification(user.Email, token); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("verification mail failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "წერილის გაგზავნა ვერ მოხერხდა",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "დადასტურების წერილი გაიგზავნა",
	})
}

// CheckVerification reports whether an account exists and is verified.
// Unknown addresses report exists=false rather than an error.
// POST /api/users/check-verification
func (h *UsersHandler) CheckVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"exists":   false,
			"verified": false,
			"error":    "შეიყვანეთ ელფოსტა",
		})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			log.Error().Err(err).Msg("user lookup failed")
		}
		c.JSON(http.StatusOK, gin.H{
			"exists":   false,
			"verified": false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"exists":   true,
		"verified": user.EmailVerified != nil,
	})
}

// Me resolves the session cookie to the current user
// GET /api/users/me
func (h *UsersHandler) Me(c *gin.Context) {
	token, err := c.Cookie(h.sessionCookieName())
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "სესია ვერ მოიძებნა",
		})
		return
	}

	userID, err := h.sessions.Resolve(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "სესია არავალიდურია",
		})
		return
	}

	// The session may outlive the account.
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "მომხმარებელი აღარ არსებობს",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"name":     user.Name,
			"verified": user.EmailVerified != nil,
		},
	})
}

// VerifyEmail consumes a verification token and redirects to the result
// page. Repeated verification is a success, not an error.
// GET /api/verify-email?token=
func (h *UsersHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.Redirect(http.StatusFound, "/verification-error")
		return
	}

	user, err := h.users.GetByVerificationToken(c.Request.Context(), token)
	if err != nil {
		c.Redirect(http.StatusFound, "/verification-error")
		return
	}

	if user.EmailVerified != nil {
		c.Redirect(http.StatusFound, "/verification-success")
		return
	}

	if err := h.users.MarkVerified(c.Request.Context(), user.ID); err != nil {
		log.Error().Err(err).Str("user", user.ID).Msg("verification update failed")
		c.Redirect(http.StatusFound, "/verification-error")
		return
	}

	c.Redirect(http.StatusFound, "/verification-success")
}
