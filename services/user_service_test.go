package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/socialkit-dev/identity/domain"
)

func strPtr(s string) *string { return &s }

func TestUserService_Get(t *testing.T) {
	userRepo := new(MockUserRepository)
	profileRepo := new(MockProfileRepository)
	svc := NewUserService(userRepo, profileRepo, new(MockSocialLinkRepository))
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "user-1").
		Return(&domain.User{ID: "user-1", ProfileID: "profile-1"}, nil)
	profileRepo.On("GetByID", ctx, "profile-1").
		Return(&domain.Profile{ID: "profile-1", Location: "Berlin"}, nil)

	got, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.User.ID)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "Berlin", got.Profile.Location)
}

func TestUserService_GetUnknownUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo, new(MockProfileRepository), new(MockSocialLinkRepository))
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "ghost").Return(nil, domain.ErrNotFound)

	_, err := svc.Get(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserService_UpdateSparse(t *testing.T) {
	userRepo := new(MockUserRepository)
	profileRepo := new(MockProfileRepository)
	svc := NewUserService(userRepo, profileRepo, new(MockSocialLinkRepository))
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "user-1").
		Return(&domain.User{ID: "user-1", ProfileID: "profile-1", UserName: "old"}, nil)
	userRepo.On("Update", ctx, "user-1", mock.AnythingOfType("domain.UserPatch")).
		Return(&domain.User{ID: "user-1", ProfileID: "profile-1", UserName: "newname"}, nil)
	profileRepo.On("Update", ctx, "profile-1", mock.AnythingOfType("domain.ProfilePatch")).
		Return(&domain.Profile{ID: "profile-1", Location: "Lisbon"}, nil)

	got, err := svc.Update(ctx, "user-1", UpdateUserInput{
		User:    domain.UserPatch{UserName: strPtr("newname")},
		Profile: domain.ProfilePatch{Location: strPtr("Lisbon")},
	})
	require.NoError(t, err)
	assert.Equal(t, "newname", got.User.UserName)
	assert.Equal(t, "Lisbon", got.Profile.Location)
}

func TestUserService_UpdateSkipsEmptyHalves(t *testing.T) {
	userRepo := new(MockUserRepository)
	profileRepo := new(MockProfileRepository)
	svc := NewUserService(userRepo, profileRepo, new(MockSocialLinkRepository))
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "user-1").
		Return(&domain.User{ID: "user-1", ProfileID: "profile-1"}, nil)
	profileRepo.On("Update", ctx, "profile-1", mock.AnythingOfType("domain.ProfilePatch")).
		Return(&domain.Profile{ID: "profile-1", PhoneNumber: "+4915112345"}, nil)

	_, err := svc.Update(ctx, "user-1", UpdateUserInput{
		Profile: domain.ProfilePatch{PhoneNumber: strPtr("+4915112345")},
	})
	require.NoError(t, err)

	// An empty user patch must not touch the user document.
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_ListConnectedAccountsOmitsTokens(t *testing.T) {
	linkRepo := new(MockSocialLinkRepository)
	svc := NewUserService(new(MockUserRepository), new(MockProfileRepository), linkRepo)
	ctx := context.Background()

	connectedAt := time.Now().Add(-time.Hour)
	linkRepo.On("ListByUser", ctx, "user-1").Return([]*domain.SocialLink{
		{
			ID:             "link-1",
			UserID:         "user-1",
			Provider:       domain.ProviderTwitter,
			ProviderUserID: "tw-9",
			UserName:       "janedoe",
			AccessToken:    "secret-token",
			AccessSecret:   "secret-secret",
			CreatedAt:      connectedAt,
		},
	}, nil)

	accounts, err := svc.ListConnectedAccounts(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, domain.ProviderTwitter, accounts[0].Provider)
	assert.Equal(t, "janedoe", accounts[0].UserName)
	assert.Equal(t, connectedAt, accounts[0].ConnectedAt)
}

func TestUserService_FindAll(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewUserService(userRepo, new(MockProfileRepository), new(MockSocialLinkRepository))
	ctx := context.Background()

	userRepo.On("List", ctx).Return([]*domain.User{{ID: "a"}, {ID: "b"}}, nil)

	users, err := svc.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
