package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
	facebookOAuth2 "golang.org/x/oauth2/facebook"

	"github.com/socialkit-dev/identity/domain"
)

// Overridable in tests.
var FacebookUserInfoEndpoint = "https://graph.facebook.com/me?fields=id,name,email,picture"

type FacebookProvider struct {
	baseProvider
}

func NewFacebookProvider(cfg Config) *FacebookProvider {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"email", "public_profile"}
	}
	return &FacebookProvider{baseProvider{
		name: domain.ProviderFacebook,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       scopes,
			Endpoint:     facebookOAuth2.Endpoint,
		},
	}}
}

func (p *FacebookProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	body, err := getJSON(p.httpClient(ctx, token), FacebookUserInfoEndpoint)
	if err != nil {
		return nil, err
	}

	var raw struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchUserInfoFailed, err)
	}
	return &UserInfo{
		ProviderUserID: raw.ID,
		UserName:       raw.Name,
		Email:          raw.Email,
		PictureURL:     raw.Picture.Data.URL,
	}, nil
}
