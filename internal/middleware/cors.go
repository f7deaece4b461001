package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware applies one of two CORS policies by request path. Paths in
// openPaths get an allow-all policy; they are called from embedded checkout
// pages on arbitrary origins. Everything else is restricted to the
// configured origins.
//
// Installed globally (not per group) so preflight OPTIONS requests are
// answered even though only POST routes are registered for those paths.
func CORSMiddleware(allowedOrigins []string, openPaths []string) gin.HandlerFunc {
	restricted := cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})

	open := cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization"},
	})

	openSet := make(map[string]struct{}, len(openPaths))
	for _, path := range openPaths {
		openSet[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := openSet[c.Request.URL.Path]; ok {
			open(c)
			return
		}
		restricted(c)
	}
}
