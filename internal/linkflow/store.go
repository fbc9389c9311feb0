// Package linkflow stores the transient correlation state of an in-flight
// social-link authorization: everything stashed between the initiate redirect
// and the provider callback. Entries are keyed by an opaque flow id (the
// OAuth2 state parameter, or the OAuth1 request token) and expire after a
// fixed TTL so abandoned flows don't leak state.
package linkflow

import (
	"context"
	"errors"
	"time"

	"github.com/socialkit-dev/identity/domain"
)

// DefaultTTL is how long a pending flow stays claimable. Provider consent
// screens are interactive, so this is generous but bounded.
const DefaultTTL = 10 * time.Minute

// ErrFlowNotFound is returned when a callback references a flow id that was
// never stored or has already expired or been claimed.
var ErrFlowNotFound = errors.New("pending authorization flow not found or expired")

// PendingLink is the server-side state of one initiated authorization.
type PendingLink struct {
	UserID   string          `json:"user_id"`
	Provider domain.Provider `json:"provider"`
	// RequestSecret holds the OAuth1 request token secret (Twitter only).
	RequestSecret string    `json:"request_secret,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store keeps pending flows until their callback arrives or the TTL passes.
type Store interface {
	Put(ctx context.Context, flowID string, link *PendingLink) error
	// Take retrieves and removes the flow in one step: a flow id is only ever
	// good for one callback.
	Take(ctx context.Context, flowID string) (*PendingLink, error)
}
