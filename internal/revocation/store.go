// Package revocation tracks session IDs invalidated before their natural expiry.
package revocation

import (
	"context"
	"time"
)

// Store records revoked session IDs. Entries only need to survive until the
// session they refer to would have expired anyway, so implementations accept a
// TTL and may drop entries after it passes.
type Store interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}
