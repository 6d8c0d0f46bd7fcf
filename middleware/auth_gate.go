// middleware/auth_gate.go
package middleware

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rmaalouf/melodeon_backend/models"
	"github.com/rmaalouf/melodeon_backend/utils"
)

var (
	// ErrUnauthorized covers missing, malformed and invalid bearer credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBasicMismatch marks a rejected Basic attempt, which gets a challenge
	// header instead of a JSON body.
	ErrBasicMismatch = errors.New("invalid basic credentials")
)

// AuthGate admits requests carrying a valid bearer token, with an optional
// HTTP Basic fallback against the admin identity for non-API routes.
type AuthGate struct {
	tokens *utils.TokenService
	creds  *utils.CredentialStore
}

// NewAuthGate creates a gate. Pass nil creds to disable the Basic fallback.
func NewAuthGate(tokens *utils.TokenService, creds *utils.CredentialStore) *AuthGate {
	return &AuthGate{tokens: tokens, creds: creds}
}

// Authenticate inspects raw request headers and returns the authenticated
// subject id. Bearer is checked first, Basic second, deny otherwise. It is
// independent of any web framework so handlers and tests can call it directly.
func (g *AuthGate) Authenticate(header http.Header) (string, error) {
	auth := header.Get(echo.HeaderAuthorization)

	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		subjectID, err := g.tokens.Verify(token)
		if err != nil {
			return "", ErrUnauthorized
		}
		return subjectID, nil
	}

	if g.creds != nil {
		if encoded, ok := strings.CutPrefix(auth, "Basic "); ok {
			username, password, ok := decodeBasicAuth(encoded)
			if ok && g.creds.Verify(username, password) {
				return g.creds.AdminID(), nil
			}
			return "", ErrBasicMismatch
		}
	}

	return "", ErrUnauthorized
}

// Middleware wraps Authenticate for Echo routes and stores the subject id in
// the request context under "userId".
func (g *AuthGate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subjectID, err := g.Authenticate(c.Request().Header)
			if err != nil {
				if errors.Is(err, ErrBasicMismatch) {
					// Basic Auth semantics: challenge, no JSON body
					c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="Restricted"`)
					return c.NoContent(http.StatusUnauthorized)
				}
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Invalid or expired token",
				})
			}

			c.Set("userId", subjectID)
			return next(c)
		}
	}
}

// GetUserID returns the authenticated subject id set by the gate.
func GetUserID(c echo.Context) string {
	if userID, ok := c.Get("userId").(string); ok {
		return userID
	}
	return ""
}

func decodeBasicAuth(encoded string) (string, string, bool) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", false
	}
	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", "", false
	}
	return username, password, true
}
