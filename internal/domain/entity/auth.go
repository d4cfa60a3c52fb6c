// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken represents a long-lived session bound to one logical device.
// The access token is self-contained and never persisted; this record is the
// only server-side session state. At most one active row exists per
// (user, device): rotation replaces Token and ExpiresAt in place.
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this session record.
	UserID    uuid.UUID // Links this session to the User it belongs to.
	DeviceID  string    // Client-supplied opaque identifier scoping the session to one device.
	Token     string    // High-entropy opaque token value, single-use per rotation.
	ExpiresAt time.Time // The instant this refresh token becomes invalid. Strictly-after comparison.
	CreatedAt time.Time // Timestamp of when this session was created (i.e., when the user logged in).
}

// Active reports whether the session is still usable at the given instant.
// Expiry is strict: a token expiring exactly now is already expired.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.ExpiresAt.After(now)
}

// SessionInfo is a read model describing one active session for the
// session-listing endpoint. The token value itself is never exposed.
type SessionInfo struct {
	ID        uuid.UUID `json:"id"`
	DeviceID  string    `json:"device_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
