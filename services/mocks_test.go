package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/socialkit-dev/identity/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByUserName(ctx context.Context, userName string) (*domain.User, error) {
	args := m.Called(ctx, userName)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	args := m.Called(ctx, id, patch)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.([]*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.Profile, error) {
	args := m.Called(ctx, id, patch)
	if p := args.Get(0); p != nil {
		return p.(*domain.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, rec *domain.RefreshTokenRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) GetByTokenAndSession(ctx context.Context, token, sessionID string) (*domain.RefreshTokenRecord, error) {
	args := m.Called(ctx, token, sessionID)
	if r := args.Get(0); r != nil {
		return r.(*domain.RefreshTokenRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRefreshTokenRepository) Replace(ctx context.Context, rec *domain.RefreshTokenRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockSocialLinkRepository struct {
	mock.Mock
}

func (m *MockSocialLinkRepository) Create(ctx context.Context, link *domain.SocialLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockSocialLinkRepository) GetByUserAndProvider(ctx context.Context, userID string, provider domain.Provider) (*domain.SocialLink, error) {
	args := m.Called(ctx, userID, provider)
	if l := args.Get(0); l != nil {
		return l.(*domain.SocialLink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSocialLinkRepository) ListByUser(ctx context.Context, userID string) ([]*domain.SocialLink, error) {
	args := m.Called(ctx, userID)
	if l := args.Get(0); l != nil {
		return l.([]*domain.SocialLink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSocialLinkRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendWelcome(to, userName string) error {
	args := m.Called(to, userName)
	return args.Error(0)
}
