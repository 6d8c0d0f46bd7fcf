// models/auth.go

package models

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token issued on successful login
type LoginResponse struct {
	Token string `json:"token"`
}
