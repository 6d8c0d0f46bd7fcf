package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rmaalouf/melodeon_backend/models"
	"github.com/rmaalouf/melodeon_backend/utils"
)

type AuthController struct {
	creds  *utils.CredentialStore
	tokens *utils.TokenService
}

func NewAuthController(creds *utils.CredentialStore, tokens *utils.TokenService) *AuthController {
	return &AuthController{creds: creds, tokens: tokens}
}

// Login verifies the admin credentials and issues a bearer token
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Username and password are required",
		})
	}

	// Generic message on mismatch; never hint which field was wrong
	if !ac.creds.Verify(req.Username, req.Password) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	token, err := ac.tokens.Issue(ac.creds.AdminID())
	if err != nil {
		c.Logger().Errorf("Failed to issue token: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, models.LoginResponse{Token: token})
}

// Signup always responds 404. This is a single-admin system and account
// creation is permanently disabled.
func (ac *AuthController) Signup(c echo.Context) error {
	return c.JSON(http.StatusNotFound, models.Response{
		Status:  http.StatusNotFound,
		Message: "Not found",
	})
}
