package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyExternalID = errors.New("external user identifier cannot be empty")

// ErrUnauthorized indicates the request carried no authenticated subject
var ErrUnauthorized = errors.New("unauthorized: no authenticated subject")

// User is the owning principal. Identity is established by an external
// provider; the external subject is stored opaque and never interpreted.
type User struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ErrUserNotFound indicates no local user exists for the external subject
type ErrUserNotFound struct {
	ExternalID string
}

func (e ErrUserNotFound) Error() string {
	return "user not found for subject: " + e.ExternalID
}
