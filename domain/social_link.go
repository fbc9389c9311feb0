package domain

import (
	"fmt"
	"strings"
	"time"
)

// Provider identifies an external social account provider.
type Provider string

const (
	ProviderTwitter   Provider = "twitter"
	ProviderFacebook  Provider = "facebook"
	ProviderLinkedIn  Provider = "linkedin"
	ProviderInstagram Provider = "instagram"
	ProviderGoogle    Provider = "google"
	ProviderMeta      Provider = "meta"
)

// ParseProvider maps a path/query value to a known Provider.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(s)) {
	case ProviderTwitter:
		return ProviderTwitter, nil
	case ProviderFacebook:
		return ProviderFacebook, nil
	case ProviderLinkedIn:
		return ProviderLinkedIn, nil
	case ProviderInstagram:
		return ProviderInstagram, nil
	case ProviderGoogle:
		return ProviderGoogle, nil
	case ProviderMeta:
		return ProviderMeta, nil
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

// SocialLink ties one local user to one external provider account. The
// (user_id, provider) pair is unique. AccessSecret is only set for OAuth1
// providers (Twitter); RefreshToken and IDToken only where the provider
// issues them.
type SocialLink struct {
	ID             string   `bson:"_id,omitempty"`
	UserID         string   `bson:"user_id"`
	Provider       Provider `bson:"provider"`
	ProviderUserID string   `bson:"provider_user_id,omitempty"`

	UserName     string    `bson:"user_name,omitempty"`
	Email        string    `bson:"email,omitempty"`
	AccessToken  string    `bson:"access_token,omitempty"`
	AccessSecret string    `bson:"access_secret,omitempty"`
	RefreshToken string    `bson:"refresh_token,omitempty"`
	IDToken      string    `bson:"id_token,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}
