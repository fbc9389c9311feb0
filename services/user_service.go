package services

import (
	"context"
	"errors"
	"time"

	"github.com/socialkit-dev/identity/domain"
)

// UserWithProfile pairs the identity record with its profile for read APIs.
// The profile may be nil for legacy users created without one.
type UserWithProfile struct {
	User    *domain.User
	Profile *domain.Profile
}

// ConnectedAccount is the externally visible view of a social link. Token
// material never leaves the service.
type ConnectedAccount struct {
	Provider       domain.Provider `json:"provider"`
	ProviderUserID string          `json:"providerUserId,omitempty"`
	UserName       string          `json:"userName,omitempty"`
	Email          string          `json:"email,omitempty"`
	ConnectedAt    time.Time       `json:"connectedAt"`
}

// UpdateUserInput is the combined sparse patch across the user and its
// profile. Empty halves are skipped entirely.
type UpdateUserInput struct {
	User    domain.UserPatch
	Profile domain.ProfilePatch
}

// UserService serves user and profile reads and sparse updates.
type UserService struct {
	userRepo    domain.UserRepository
	profileRepo domain.ProfileRepository
	linkRepo    domain.SocialLinkRepository
}

func NewUserService(
	userRepo domain.UserRepository,
	profileRepo domain.ProfileRepository,
	linkRepo domain.SocialLinkRepository,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		linkRepo:    linkRepo,
	}
}

// FindAll returns every user. Admin use only; enforcement sits at the API
// layer.
func (s *UserService) FindAll(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}

// Get loads a user and, when present, its profile.
func (s *UserService) Get(ctx context.Context, userID string) (*UserWithProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &UserWithProfile{User: user}
	if user.ProfileID != "" {
		profile, err := s.profileRepo.GetByID(ctx, user.ProfileID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		out.Profile = profile
	}
	return out, nil
}

// Update applies the sparse patch to the user and its profile. Fields absent
// from the patch keep their stored values.
func (s *UserService) Update(ctx context.Context, userID string, in UpdateUserInput) (*UserWithProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !in.User.IsEmpty() {
		user, err = s.userRepo.Update(ctx, userID, in.User)
		if err != nil {
			return nil, err
		}
	}

	out := &UserWithProfile{User: user}
	if user.ProfileID != "" {
		if !in.Profile.IsEmpty() {
			profile, err := s.profileRepo.Update(ctx, user.ProfileID, in.Profile)
			if err != nil {
				return nil, err
			}
			out.Profile = profile
		} else {
			profile, err := s.profileRepo.GetByID(ctx, user.ProfileID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			out.Profile = profile
		}
	}
	return out, nil
}

// ListConnectedAccounts returns the user's social links stripped of all
// token material.
func (s *UserService) ListConnectedAccounts(ctx context.Context, userID string) ([]ConnectedAccount, error) {
	links, err := s.linkRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	accounts := make([]ConnectedAccount, 0, len(links))
	for _, link := range links {
		accounts = append(accounts, ConnectedAccount{
			Provider:       link.Provider,
			ProviderUserID: link.ProviderUserID,
			UserName:       link.UserName,
			Email:          link.Email,
			ConnectedAt:    link.CreatedAt,
		})
	}
	return accounts, nil
}
