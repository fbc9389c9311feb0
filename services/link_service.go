package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/socialkit-dev/identity/domain"
	"github.com/socialkit-dev/identity/internal/linkflow"
	"github.com/socialkit-dev/identity/internal/provider"
)

// accountPagePath is where the browser lands after every callback, success or
// not. The dashboard reads the error query parameter.
const accountPagePath = "/dashboard/account"

// CallbackParams carries the provider callback's query parameters. State and
// Code are set for OAuth2 providers; OAuthToken and OAuthVerifier for OAuth1.
type CallbackParams struct {
	State         string
	Code          string
	OAuthToken    string
	OAuthVerifier string
}

// LinkService orchestrates connecting and disconnecting external social
// accounts. OAuth2 providers share one flow; Twitter's OAuth1a flow is
// special-cased because its correlation key is the request token rather than
// a state parameter.
type LinkService struct {
	userRepo      domain.UserRepository
	linkRepo      domain.SocialLinkRepository
	flows         linkflow.Store
	oauth2        map[domain.Provider]provider.OAuth2Provider
	oauth1        map[domain.Provider]provider.OAuth1Provider
	clientBaseURL string
}

func NewLinkService(
	userRepo domain.UserRepository,
	linkRepo domain.SocialLinkRepository,
	flows linkflow.Store,
	clientBaseURL string,
) *LinkService {
	return &LinkService{
		userRepo:      userRepo,
		linkRepo:      linkRepo,
		flows:         flows,
		oauth2:        make(map[domain.Provider]provider.OAuth2Provider),
		oauth1:        make(map[domain.Provider]provider.OAuth1Provider),
		clientBaseURL: clientBaseURL,
	}
}

// RegisterOAuth2Provider makes an OAuth2 provider available for linking.
func (s *LinkService) RegisterOAuth2Provider(p provider.OAuth2Provider) {
	s.oauth2[p.Name()] = p
}

// RegisterOAuth1Provider makes an OAuth1 provider available for linking.
func (s *LinkService) RegisterOAuth1Provider(p provider.OAuth1Provider) {
	s.oauth1[p.Name()] = p
}

// resolveProvider canonicalizes the path value. "meta" is an alias for the
// Facebook application.
func resolveProvider(name string) (domain.Provider, error) {
	p, err := domain.ParseProvider(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	if p == domain.ProviderMeta {
		p = domain.ProviderFacebook
	}
	return p, nil
}

// InitiateLink starts the authorization flow for one provider and returns the
// URL to redirect the user to. An account already linked to the provider is
// rejected before any upstream call is made.
func (s *LinkService) InitiateLink(ctx context.Context, userID, providerName string) (string, error) {
	prov, err := resolveProvider(providerName)
	if err != nil {
		return "", err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", err
	}

	if _, err := s.linkRepo.GetByUserAndProvider(ctx, userID, prov); err == nil {
		return "", domain.ErrAlreadyConnected
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	if p1, ok := s.oauth1[prov]; ok {
		authURL, requestToken, requestSecret, err := p1.RequestAuthorization(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrUpstreamProvider, err)
		}
		pending := &linkflow.PendingLink{
			UserID:        userID,
			Provider:      prov,
			RequestSecret: requestSecret,
			CreatedAt:     time.Now(),
		}
		if err := s.flows.Put(ctx, requestToken, pending); err != nil {
			return "", err
		}
		return authURL, nil
	}

	p2, ok := s.oauth2[prov]
	if !ok {
		return "", fmt.Errorf("%w: provider %q is not configured", domain.ErrNotFound, prov)
	}

	state := uuid.NewString()
	pending := &linkflow.PendingLink{
		UserID:    userID,
		Provider:  prov,
		CreatedAt: time.Now(),
	}
	if err := s.flows.Put(ctx, state, pending); err != nil {
		return "", err
	}
	return p2.AuthCodeURL(state), nil
}

// CompleteLink finishes the flow when the provider calls back. It always
// returns a redirect target on the client app: the account page on success,
// the same page with error=401 on any failure. Failures are logged, never
// surfaced to the browser beyond the query parameter.
func (s *LinkService) CompleteLink(ctx context.Context, providerName string, params CallbackParams) string {
	if err := s.completeLink(ctx, providerName, params); err != nil {
		log.Error().Err(err).Str("provider", providerName).Msg("Social link callback failed")
		return s.clientBaseURL + accountPagePath + "?error=401"
	}
	return s.clientBaseURL + accountPagePath
}

func (s *LinkService) completeLink(ctx context.Context, providerName string, params CallbackParams) error {
	prov, err := resolveProvider(providerName)
	if err != nil {
		return err
	}

	if p1, ok := s.oauth1[prov]; ok {
		return s.completeOAuth1(ctx, p1, params)
	}
	p2, ok := s.oauth2[prov]
	if !ok {
		return fmt.Errorf("%w: provider %q is not configured", domain.ErrNotFound, prov)
	}
	return s.completeOAuth2(ctx, p2, params)
}

func (s *LinkService) completeOAuth2(ctx context.Context, p provider.OAuth2Provider, params CallbackParams) error {
	if params.State == "" || params.Code == "" {
		return errors.New("callback is missing state or code")
	}

	pending, err := s.flows.Take(ctx, params.State)
	if err != nil {
		return err
	}
	if pending.Provider != p.Name() {
		return fmt.Errorf("state was issued for provider %q, not %q", pending.Provider, p.Name())
	}

	token, err := p.Exchange(ctx, params.Code)
	if err != nil {
		return err
	}
	info, err := p.FetchUserInfo(ctx, token)
	if err != nil {
		return err
	}

	link := &domain.SocialLink{
		UserID:         pending.UserID,
		Provider:       p.Name(),
		ProviderUserID: info.ProviderUserID,
		UserName:       info.UserName,
		Email:          info.Email,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		link.IDToken = idToken
	}
	return s.linkRepo.Create(ctx, link)
}

func (s *LinkService) completeOAuth1(ctx context.Context, p provider.OAuth1Provider, params CallbackParams) error {
	if params.OAuthToken == "" || params.OAuthVerifier == "" {
		return errors.New("callback is missing oauth_token or oauth_verifier")
	}

	pending, err := s.flows.Take(ctx, params.OAuthToken)
	if err != nil {
		return err
	}
	if pending.Provider != p.Name() {
		return fmt.Errorf("request token was issued for provider %q, not %q", pending.Provider, p.Name())
	}

	accessToken, accessSecret, err := p.ExchangeVerifier(ctx, params.OAuthToken, pending.RequestSecret, params.OAuthVerifier)
	if err != nil {
		return err
	}
	info, err := p.FetchUserInfo(ctx, accessToken, accessSecret)
	if err != nil {
		return err
	}

	link := &domain.SocialLink{
		UserID:         pending.UserID,
		Provider:       p.Name(),
		ProviderUserID: info.ProviderUserID,
		UserName:       info.UserName,
		Email:          info.Email,
		AccessToken:    accessToken,
		AccessSecret:   accessSecret,
	}
	return s.linkRepo.Create(ctx, link)
}

// Disconnect removes a provider link. Providers that support revocation get
// their stored credential revoked best effort before the row is deleted.
func (s *LinkService) Disconnect(ctx context.Context, userID, providerName string) error {
	prov, err := resolveProvider(providerName)
	if err != nil {
		return err
	}

	link, err := s.linkRepo.GetByUserAndProvider(ctx, userID, prov)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotConnected
		}
		return err
	}

	if p2, ok := s.oauth2[prov]; ok {
		if revoker, ok := p2.(provider.TokenRevoker); ok {
			credential := link.RefreshToken
			if credential == "" {
				credential = link.AccessToken
			}
			if credential != "" {
				if err := revoker.RevokeToken(ctx, credential); err != nil {
					log.Warn().Err(err).
						Str("provider", string(prov)).
						Str("user_id", userID).
						Msg("Token revocation failed, removing link anyway")
				}
			}
		}
	}
	return s.linkRepo.Delete(ctx, link.ID)
}
