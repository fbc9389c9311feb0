package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/socialkit-dev/identity/domain"
)

func TestGoogleProvider_FetchUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-access-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"google-sub-1","name":"Jane Doe","email":"jane@example.com","picture":"https://pictures.example.com/jane.png"}`))
	}))
	defer server.Close()

	// Point the userinfo endpoint at the test server for the duration of the test.
	oldEndpoint := GoogleUserInfoEndpoint
	GoogleUserInfoEndpoint = server.URL
	defer func() { GoogleUserInfoEndpoint = oldEndpoint }()

	p := NewGoogleProvider(Config{ClientID: "id", ClientSecret: "secret", CallbackURL: "http://localhost/cb"})
	assert.Equal(t, domain.ProviderGoogle, p.Name())

	info, err := p.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "test-access-token"})
	require.NoError(t, err)
	assert.Equal(t, "google-sub-1", info.ProviderUserID)
	assert.Equal(t, "Jane Doe", info.UserName)
	assert.Equal(t, "jane@example.com", info.Email)
	assert.Equal(t, "https://pictures.example.com/jane.png", info.PictureURL)
}

func TestGoogleProvider_FetchUserInfoUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer server.Close()

	oldEndpoint := GoogleUserInfoEndpoint
	GoogleUserInfoEndpoint = server.URL
	defer func() { GoogleUserInfoEndpoint = oldEndpoint }()

	p := NewGoogleProvider(Config{ClientID: "id", ClientSecret: "secret"})
	_, err := p.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "expired"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchUserInfoFailed)
}

func TestGoogleProvider_RevokeToken(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotToken = r.PostForm.Get("token")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	oldEndpoint := GoogleRevokeEndpoint
	GoogleRevokeEndpoint = server.URL
	defer func() { GoogleRevokeEndpoint = oldEndpoint }()

	p := NewGoogleProvider(Config{ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, p.RevokeToken(context.Background(), "stored-access-token"))
	assert.Equal(t, "stored-access-token", gotToken)
}

func TestFacebookProvider_FetchUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"fb-42","name":"John Smith","email":"john@example.com","picture":{"data":{"url":"https://graph.example.com/pic.jpg"}}}`))
	}))
	defer server.Close()

	oldEndpoint := FacebookUserInfoEndpoint
	FacebookUserInfoEndpoint = server.URL
	defer func() { FacebookUserInfoEndpoint = oldEndpoint }()

	p := NewFacebookProvider(Config{ClientID: "id", ClientSecret: "secret"})
	info, err := p.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "fb-42", info.ProviderUserID)
	assert.Equal(t, "John Smith", info.UserName)
	assert.Equal(t, "john@example.com", info.Email)
	assert.Equal(t, "https://graph.example.com/pic.jpg", info.PictureURL)
}

func TestLinkedInProvider_FetchUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"li-7","name":"Ada Lovelace","email":"ada@example.com","picture":"https://media.example.com/ada.png"}`))
	}))
	defer server.Close()

	oldEndpoint := LinkedInUserInfoEndpoint
	LinkedInUserInfoEndpoint = server.URL
	defer func() { LinkedInUserInfoEndpoint = oldEndpoint }()

	p := NewLinkedInProvider(Config{ClientID: "id", ClientSecret: "secret"})
	info, err := p.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "li-7", info.ProviderUserID)
	assert.Equal(t, "ada@example.com", info.Email)
}

func TestInstagramProvider_FetchUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"ig-9","username":"adaloves"}`))
	}))
	defer server.Close()

	oldEndpoint := InstagramUserInfoEndpoint
	InstagramUserInfoEndpoint = server.URL
	defer func() { InstagramUserInfoEndpoint = oldEndpoint }()

	p := NewInstagramProvider(Config{ClientID: "id", ClientSecret: "secret"})
	info, err := p.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "ig-9", info.ProviderUserID)
	assert.Equal(t, "adaloves", info.UserName)
	assert.Empty(t, info.Email)
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	p := NewFacebookProvider(Config{ClientID: "client-id", ClientSecret: "secret", CallbackURL: "http://localhost/cb"})
	u := p.AuthCodeURL("flow-state-123")
	assert.Contains(t, u, "state=flow-state-123")
	assert.Contains(t, u, "client_id=client-id")
}
