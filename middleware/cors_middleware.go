package middleware

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// CORS builds the cross-origin policy from the environment mode. Development
// accepts any caller; production only the configured origins.
func CORS(env string, allowedOrigins []string) echo.MiddlewareFunc {
	origins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	if env == "production" {
		origins = allowedOrigins
	} else {
		origins = append(origins, allowedOrigins...)
	}

	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        86400, // 24 hours
	})
}
