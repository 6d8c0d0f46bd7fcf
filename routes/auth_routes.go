package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/rmaalouf/melodeon_backend/controllers"
)

// RegisterAuthRoutes sets up the public authentication routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	e.POST("/api/auth/login", authController.Login)
	// Signup is permanently disabled; the handler always responds 404
	e.POST("/api/auth/signup", authController.Signup)
}
