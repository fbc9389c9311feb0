package domain

import "context"

// UserRepository persists identity records.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUserName(ctx context.Context, userName string) (*User, error)
	// Update applies a sparse patch; untouched fields keep their stored value.
	Update(ctx context.Context, id string, patch UserPatch) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

// ProfileRepository persists the secondary user attributes.
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	Update(ctx context.Context, id string, patch ProfilePatch) (*Profile, error)
}

// RefreshTokenRepository is the ledger of currently valid refresh tokens.
type RefreshTokenRepository interface {
	Create(ctx context.Context, rec *RefreshTokenRecord) error
	GetByTokenAndSession(ctx context.Context, token, sessionID string) (*RefreshTokenRecord, error)
	// Replace swaps the record for the session in a single upsert so rotation
	// never leaves the session without a valid token.
	Replace(ctx context.Context, rec *RefreshTokenRecord) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}

// SocialLinkRepository stores per-user, per-provider OAuth credentials.
type SocialLinkRepository interface {
	Create(ctx context.Context, link *SocialLink) error
	GetByUserAndProvider(ctx context.Context, userID string, provider Provider) (*SocialLink, error)
	ListByUser(ctx context.Context, userID string) ([]*SocialLink, error)
	Delete(ctx context.Context, id string) error
}

// OrderRepository tracks payment orders created against a gateway.
type OrderRepository interface {
	Create(ctx context.Context, order *PaymentOrder) error
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*PaymentOrder, error)
	UpdateStatus(ctx context.Context, gatewayOrderID string, status OrderStatus) error
}
