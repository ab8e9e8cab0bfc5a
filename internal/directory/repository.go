package directory

import "context"

// Repository defines the interface for user-record persistence.
type Repository interface {
	// Upsert inserts the user keyed by ExternalID, or refreshes email, name,
	// and last-login time on an existing record. Returns the stored record.
	Upsert(ctx context.Context, user User) (User, error)

	// FindByExternalID returns the user with the given external ID, or nil
	// when no record exists.
	FindByExternalID(ctx context.Context, externalID string) (*User, error)
}
