// Package directory persists the user records established by login handoffs.
package directory

import (
	"time"

	"github.com/google/uuid"
)

// User is a dashboard user record. ExternalID is the stable identifier the
// login site embeds in handoff tokens; it is the upsert key.
type User struct {
	ID          uuid.UUID
	ExternalID  string
	Email       string
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt time.Time
}
