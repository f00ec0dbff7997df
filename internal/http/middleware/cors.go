package middleware

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultOrigins = []string{
	"http://localhost:8080",
	"http://localhost:5001",
	"http://127.0.0.1:8080",
	"http://127.0.0.1:5001",
}

// CORS allows the listed origins, or the local dev defaults when none are given.
func CORS(origins []string) gin.HandlerFunc {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		allowed = defaultOrigins
	}
	return cors.New(cors.Config{
		AllowOrigins: allowed,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type", "Accept", "X-Requested-With", "X-Request-Id", "X-Trace-Id",
			"HX-Request", "HX-Trigger", "HX-Target", "HX-Current-URL",
		},
		ExposeHeaders:    []string{"HX-Trigger", "X-Request-Id", "X-Trace-Id"},
		AllowCredentials: true,
	})
}
