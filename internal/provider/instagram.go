package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/socialkit-dev/identity/domain"
)

// Overridable in tests.
var InstagramUserInfoEndpoint = "https://graph.instagram.com/me?fields=id,username"

// InstagramProvider uses the Basic Display API. Instagram does not expose the
// account email, so only the provider id and username are captured.
type InstagramProvider struct {
	baseProvider
}

func NewInstagramProvider(cfg Config) *InstagramProvider {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"user_profile"}
	}
	return &InstagramProvider{baseProvider{
		name: domain.ProviderInstagram,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       scopes,
			Endpoint:     endpoints.Instagram,
		},
	}}
}

func (p *InstagramProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	body, err := getJSON(p.httpClient(ctx, token), InstagramUserInfoEndpoint)
	if err != nil {
		return nil, err
	}

	var raw struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchUserInfoFailed, err)
	}
	return &UserInfo{
		ProviderUserID: raw.ID,
		UserName:       raw.Username,
	}, nil
}
