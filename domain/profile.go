package domain

import "time"

// Profile holds the secondary attributes of a user. One profile is owned by
// exactly one user and is created alongside it at registration.
type Profile struct {
	ID          string     `bson:"_id,omitempty"`
	DateOfBirth *time.Time `bson:"date_of_birth,omitempty"`
	PhoneNumber string     `bson:"phone_number,omitempty"`
	Location    string     `bson:"location,omitempty"`
	Website     string     `bson:"website,omitempty"`
	PictureURL  string     `bson:"picture_url,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

// ProfilePatch carries a sparse profile update: nil fields are left untouched.
type ProfilePatch struct {
	DateOfBirth *time.Time
	PhoneNumber *string
	Location    *string
	Website     *string
	PictureURL  *string
}

func (p ProfilePatch) IsEmpty() bool {
	return p.DateOfBirth == nil && p.PhoneNumber == nil && p.Location == nil &&
		p.Website == nil && p.PictureURL == nil
}
