package domain

import "time"

// RefreshTokenRecord is one active session's renewable credential. At most one
// non-expired record exists per session id; rotation replaces the record in a
// single upsert so there is never a window with zero valid tokens for the
// session.
type RefreshTokenRecord struct {
	ID        string    `bson:"_id,omitempty"`
	SessionID string    `bson:"session_id"`
	UserID    string    `bson:"user_id"`
	Token     string    `bson:"token"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// Expired reports whether the record's expiry is in the past at the given
// instant. Expired records are rejected at validation time; a TTL index
// eventually removes them.
func (r *RefreshTokenRecord) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}
