// Package provider implements the per-provider OAuth clients used for social
// account linking. Google, LinkedIn, Facebook and Instagram follow the OAuth2
// authorization-code flow; Twitter uses the OAuth1a three-legged flow and is
// special-cased by the orchestrator.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/socialkit-dev/identity/domain"
)

var (
	ErrMisconfigured       = errors.New("provider is misconfigured")
	ErrExchangeFailed      = errors.New("failed to exchange authorization grant for token")
	ErrFetchUserInfoFailed = errors.New("failed to fetch user info from provider")
)

// Config carries one provider's application credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string
}

// UserInfo is the minimal profile data persisted with a social link.
type UserInfo struct {
	ProviderUserID string
	UserName       string
	Email          string
	PictureURL     string
}

// OAuth2Provider drives the authorization-code flow for one provider.
type OAuth2Provider interface {
	Name() domain.Provider

	// AuthCodeURL builds the consent URL the user is redirected to. The state
	// parameter doubles as the pending-flow id.
	AuthCodeURL(state string) string

	// Exchange trades the callback's authorization code for tokens.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// FetchUserInfo retrieves the linked account's profile with the token.
	FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error)
}

// OAuth1Provider drives the OAuth1a three-legged flow (Twitter).
type OAuth1Provider interface {
	Name() domain.Provider

	// RequestAuthorization obtains temporary credentials and returns the
	// authorize URL plus the request token pair to stash for the callback.
	RequestAuthorization(ctx context.Context) (authURL, requestToken, requestSecret string, err error)

	// ExchangeVerifier trades the callback verifier for persistent credentials.
	ExchangeVerifier(ctx context.Context, requestToken, requestSecret, verifier string) (accessToken, accessSecret string, err error)

	FetchUserInfo(ctx context.Context, accessToken, accessSecret string) (*UserInfo, error)
}

// TokenRevoker is implemented by providers that support revoking a stored
// credential on disconnect.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, token string) error
}

// baseProvider holds the pieces every OAuth2 provider shares.
type baseProvider struct {
	name domain.Provider
	conf *oauth2.Config
}

func (b *baseProvider) Name() domain.Provider {
	return b.name
}

func (b *baseProvider) AuthCodeURL(state string) string {
	return b.conf.AuthCodeURL(state)
}

func (b *baseProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := b.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	return token, nil
}

func (b *baseProvider) httpClient(ctx context.Context, token *oauth2.Token) *http.Client {
	return b.conf.Client(ctx, token)
}

// getJSON performs an authenticated GET and hands back the response body, or
// a wrapped ErrFetchUserInfoFailed for transport and non-200 failures.
func getJSON(client *http.Client, url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchUserInfoFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchUserInfoFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrFetchUserInfoFailed, resp.StatusCode, string(body))
	}
	return body, nil
}
