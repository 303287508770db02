package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns the CORS middleware. The catalog and portfolio read APIs
// are public, but cookies back both auth schemes, so origins must be
// enumerable and credentials allowed.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(allowedOrigins) == 0 {
		// No configured origins: fall back to open access, which requires
		// credentials off.
		config.AllowOrigins = []string{"*"}
		config.AllowCredentials = false
	}

	return cors.New(config)
}
