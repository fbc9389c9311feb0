package domain

import "time"

// Role defines the possible roles of a user account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the identity record. Email and user name are unique across the
// collection (enforced by indexes in the mongodb package).
type User struct {
	ID           string    `bson:"_id,omitempty"`
	UserName     string    `bson:"user_name"`
	FirstName    string    `bson:"first_name,omitempty"`
	LastName     string    `bson:"last_name,omitempty"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         Role      `bson:"role"`
	ProfileID    string    `bson:"profile_id,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
	Version      int       `bson:"version"`
}

// UserPatch carries a sparse update: nil fields are left untouched.
// Every applied patch bumps the document version.
type UserPatch struct {
	UserName  *string
	FirstName *string
	LastName  *string
	Role      *Role
}

// IsEmpty reports whether the patch would change nothing.
func (p UserPatch) IsEmpty() bool {
	return p.UserName == nil && p.FirstName == nil && p.LastName == nil && p.Role == nil
}
