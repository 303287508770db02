package middleware

import (
	"net/http"
	"strings"

	"miro-content-service/internal/auth"

	"github.com/gin-gonic/gin"
)

// AdminAuth returns a middleware that requires a valid admin token, taken
// from the auth_token cookie or an Authorization: Bearer header.
// Verified claims are stored on the context under "admin_claims".
func AdminAuth(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.AdminCookieName)
		if err != nil || token == "" {
			header := c.GetHeader("Authorization")
			if strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  401,
				"error": "ტოკენი ვერ მოიძებნა",
			})
			return
		}

		claims, err := issuer.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  401,
				"error": "ტოკენი არავალიდურია",
			})
			return
		}

		c.Set("admin_claims", claims)
		c.Next()
	}
}
