package handler

import (
	"errors"
	"net/http"

	"miro-content-service/internal/auth"
	"miro-content-service/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AuthHandler implements the hand-rolled admin login: SHA-256 password
// check against the admin store, HS256 JWT in the auth_token cookie.
type AuthHandler struct {
	admins *repository.DocStore
	issuer *auth.TokenIssuer
	secure bool // secure cookies in production
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(admins *repository.DocStore, issuer *auth.TokenIssuer, secure bool) *AuthHandler {
	return &AuthHandler{admins: admins, issuer: issuer, secure: secure}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an admin and sets the auth_token cookie
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "შეიყვანეთ მომხმარებელი და პაროლი",
		})
		return
	}

	admin, err := h.admins.GetAdminByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "მომხმარებელი ვერ მოიძებნა",
			})
			return
		}
		log.Error().Err(err).Msg("admin lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "სისტემური შეცდომა",
		})
		return
	}

	if !auth.CheckAdminPassword(req.Password, admin.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "არასწორი პაროლი",
		})
		return
	}

	token, err := h.issuer.Issue(admin.AdminID, admin.Username)
	if err != nil {
		log.Error().Err(err).Msg("token issue failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "სისტემური შეცდომა",
		})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.AdminCookieName, token, int(h.issuer.TTL().Seconds()), "/", "", h.secure, true)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "წარმატებული ავტორიზაცია",
	})
}

// Check validates the admin token and re-reads the admin record
// GET /api/auth/check
func (h *AuthHandler) Check(c *gin.Context) {
	token, err := c.Cookie(auth.AdminCookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "ტოკენი ვერ მოიძებნა",
		})
		return
	}

	claims, err := h.issuer.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "ტოკენი არავალიდურია",
		})
		return
	}

	// The token is stateless; the record behind it may be gone.
	admin, err := h.admins.GetAdmin(claims.UserID)
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
			"userId":   admin.AdminID,
			"username": admin.Username,
		},
	})
}

// Logout clears the admin cookie
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.AdminCookieName, "", -1, "/", "", h.secure, true)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "წარმატებით გამოხვედით სისტემიდან",
	})
}
