package models

import "github.com/google/uuid"

// newID returns a random UUID string for primary keys
func newID() string {
	return uuid.NewString()
}
