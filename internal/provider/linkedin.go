package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/socialkit-dev/identity/domain"
)

// LinkedIn exposes an OIDC-style userinfo endpoint under the v2 API.
// Overridable in tests.
var LinkedInUserInfoEndpoint = "https://api.linkedin.com/v2/userinfo"

type LinkedInProvider struct {
	baseProvider
}

func NewLinkedInProvider(cfg Config) *LinkedInProvider {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "profile", "email"}
	}
	return &LinkedInProvider{baseProvider{
		name: domain.ProviderLinkedIn,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       scopes,
			Endpoint:     endpoints.LinkedIn,
		},
	}}
}

func (p *LinkedInProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	body, err := getJSON(p.httpClient(ctx, token), LinkedInUserInfoEndpoint)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Sub     string `json:"sub"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchUserInfoFailed, err)
	}
	return &UserInfo{
		ProviderUserID: raw.Sub,
		UserName:       raw.Name,
		Email:          raw.Email,
		PictureURL:     raw.Picture,
	}, nil
}
