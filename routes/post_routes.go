package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/rmaalouf/melodeon_backend/controllers"
	"github.com/rmaalouf/melodeon_backend/middleware"
)

// RegisterPostRoutes sets up the public feed routes and the gated
// authoring routes.
func RegisterPostRoutes(e *echo.Echo, postController *controllers.PostController, gate *middleware.AuthGate) {
	// Public read-only feed
	e.GET("/api/posts", postController.GetPosts)
	e.GET("/api/posts/:id", postController.GetPost)

	// Mutations require the authorization gate
	protected := e.Group("/api/posts", gate.Middleware())
	protected.POST("", postController.CreatePost)
	protected.PUT("/:id", postController.UpdatePost)
	protected.DELETE("/:id", postController.DeletePost)
}
