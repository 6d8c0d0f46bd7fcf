// utils/credentials.go
package utils

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmaalouf/melodeon_backend/models"
)

// CredentialStore holds the single admin identity. The plaintext password
// from configuration is hashed once at startup and discarded.
type CredentialStore struct {
	admin models.Admin
}

// NewCredentialStore builds the admin identity from configuration.
func NewCredentialStore(username, password string) (*CredentialStore, error) {
	if username == "" || password == "" {
		return nil, errors.New("admin username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &CredentialStore{
		admin: models.Admin{
			ID:           primitive.NewObjectID(),
			Username:     username,
			PasswordHash: string(hash),
		},
	}, nil
}

// Verify reports whether the supplied credentials match the admin identity.
func (s *CredentialStore) Verify(username, password string) bool {
	if username != s.admin.Username {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password)) == nil
}

// AdminID returns the admin's subject id used in issued tokens.
func (s *CredentialStore) AdminID() string {
	return s.admin.ID.Hex()
}
