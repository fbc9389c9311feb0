package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dghubble/oauth1"
	twitterAuth "github.com/dghubble/oauth1/twitter"

	"github.com/socialkit-dev/identity/domain"
)

// Overridable in tests.
var TwitterVerifyCredentialsEndpoint = "https://api.twitter.com/1.1/account/verify_credentials.json?include_email=true&skip_status=true"

// TwitterProvider implements the OAuth1a three-legged flow. The request token
// secret obtained in the first leg must be carried over to the callback; the
// orchestrator stashes it in the pending-flow store keyed by the request token.
type TwitterProvider struct {
	conf *oauth1.Config
}

func NewTwitterProvider(cfg Config) *TwitterProvider {
	return &TwitterProvider{
		conf: &oauth1.Config{
			ConsumerKey:    cfg.ClientID,
			ConsumerSecret: cfg.ClientSecret,
			CallbackURL:    cfg.CallbackURL,
			Endpoint:       twitterAuth.AuthorizeEndpoint,
		},
	}
}

func (p *TwitterProvider) Name() domain.Provider {
	return domain.ProviderTwitter
}

func (p *TwitterProvider) RequestAuthorization(ctx context.Context) (string, string, string, error) {
	requestToken, requestSecret, err := p.conf.RequestToken()
	if err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	authURL, err := p.conf.AuthorizationURL(requestToken)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	return authURL.String(), requestToken, requestSecret, nil
}

func (p *TwitterProvider) ExchangeVerifier(ctx context.Context, requestToken, requestSecret, verifier string) (string, string, error) {
	accessToken, accessSecret, err := p.conf.AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	return accessToken, accessSecret, nil
}

func (p *TwitterProvider) FetchUserInfo(ctx context.Context, accessToken, accessSecret string) (*UserInfo, error) {
	client := p.conf.Client(ctx, oauth1.NewToken(accessToken, accessSecret))
	body, err := getJSON(client, TwitterVerifyCredentialsEndpoint)
	if err != nil {
		return nil, err
	}

	var raw struct {
		IDStr           string `json:"id_str"`
		ScreenName      string `json:"screen_name"`
		Email           string `json:"email"`
		ProfileImageURL string `json:"profile_image_url_https"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchUserInfoFailed, err)
	}
	return &UserInfo{
		ProviderUserID: raw.IDStr,
		UserName:       raw.ScreenName,
		Email:          raw.Email,
		PictureURL:     raw.ProfileImageURL,
	}, nil
}
