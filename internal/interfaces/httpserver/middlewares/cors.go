package middlewares

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS builds the cross-origin middleware from an allow list. A "*" entry
// allows every origin.
func CORS(allowOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader, "Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if allowsAll(allowOrigins) {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowOrigins
	}
	return cors.New(cfg)
}

// WildcardOrigin sets "Access-Control-Allow-Origin: *" on responses to
// requests that carry no Origin header, so non-browser callers see the same
// headers as browsers do.
func WildcardOrigin(allowOrigins []string) gin.HandlerFunc {
	enabled := allowsAll(allowOrigins)
	return func(c *gin.Context) {
		if enabled && c.GetHeader("Origin") == "" {
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Next()
	}
}

func allowsAll(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
