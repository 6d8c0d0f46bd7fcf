package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is the single author identity. It is built once at startup from
// configuration and never persisted or mutated afterwards.
type Admin struct {
	ID           primitive.ObjectID `json:"id"`
	Username     string             `json:"username"`
	PasswordHash string             `json:"-"`
}
