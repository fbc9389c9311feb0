package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/socialkit-dev/identity/domain"
)

// Overridable in tests.
var (
	GoogleUserInfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"
	GoogleRevokeEndpoint   = "https://oauth2.googleapis.com/revoke"
)

// GoogleProvider links Google accounts and supports token revocation on
// disconnect.
type GoogleProvider struct {
	baseProvider
}

func NewGoogleProvider(cfg Config) *GoogleProvider {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/userinfo.email",
		}
	}
	return &GoogleProvider{baseProvider{
		name: domain.ProviderGoogle,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		},
	}}
}

// AuthCodeURL requests offline access so a refresh token is issued for the
// stored link.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *GoogleProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	body, err := getJSON(p.httpClient(ctx, token), GoogleUserInfoEndpoint)
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

// RevokeToken invalidates the credential at Google. Works for both access and
// refresh tokens.
func (p *GoogleProvider) RevokeToken(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, GoogleRevokeEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke request returned status %d", resp.StatusCode)
	}
	return nil
}
