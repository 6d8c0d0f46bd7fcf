package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/rmaalouf/melodeon_backend/config"
	"github.com/rmaalouf/melodeon_backend/controllers"
	"github.com/rmaalouf/melodeon_backend/middleware"
	"github.com/rmaalouf/melodeon_backend/repositories"
	"github.com/rmaalouf/melodeon_backend/routes"
	"github.com/rmaalouf/melodeon_backend/services"
	"github.com/rmaalouf/melodeon_backend/utils"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// listenAndServe blocks until the server stops. A graceful shutdown is not
// an error; anything else, a failed bind included, is.
func listenAndServe(e *echo.Echo, addr string) error {
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}

	// Connect to database
	client, err := config.ConnectDB(cfg.MongoURI)
	if err != nil {
		log.Fatal("MongoDB connection error: ", err)
	}
	db := client.Database(cfg.DBName)
	config.SetupCollections(db)

	// Build the admin identity and token service
	creds, err := utils.NewCredentialStore(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		log.Fatal("Credential store error: ", err)
	}
	tokens := utils.NewTokenService(cfg.JWTSecret, time.Hour)

	var media services.MediaStore
	if cfg.MediaMode == config.MediaModeLocal {
		media = services.NewDiskMediaService("uploads")
	} else {
		media = services.NewCloudMediaService(cfg.CloudName, cfg.CloudAPIKey, cfg.CloudAPISecret)
	}

	// Initialize repositories
	postRepo := repositories.NewMongoPostRepository(db)

	// Create a new Echo instance
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadMB)))
	e.Use(middleware.CORS(cfg.Env, cfg.AllowedOrigins))
	e.Use(middleware.SecurityHeaders())
	e.Use(rateLimiter.RateLimit())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Melodeon Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Initialize controllers
	gate := middleware.NewAuthGate(tokens, creds)
	authController := controllers.NewAuthController(creds, tokens)
	postController := controllers.NewPostController(postRepo, media)

	routes.RegisterAuthRoutes(e, authController)
	routes.RegisterPostRoutes(e, postController, gate)
	if cfg.MediaMode == config.MediaModeLocal {
		os.MkdirAll("uploads", 0755)
		routes.RegisterFileRoutes(e)
	}

	// Start server
	go func() {
		if err := listenAndServe(e, ":"+cfg.Port); err != nil {
			e.Logger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Error(err)
	}
	if err := client.Disconnect(ctx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}
}
