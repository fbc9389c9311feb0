package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/socialkit-dev/identity/domain"
)

// RegisterInput carries the fields accepted at signup. Name and contact
// fields are optional.
type RegisterInput struct {
	UserName    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Location    string
	Website     string
}

// AuthResult is returned by every operation that establishes a session.
type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// AuthService owns credential verification and the session token lifecycle.
// A user has at most one live session: login replaces any prior refresh
// ledger rows, and refresh rotates the row in place under the same session id.
type AuthService struct {
	userRepo    domain.UserRepository
	profileRepo domain.ProfileRepository
	refreshRepo domain.RefreshTokenRepository
	hasher      PasswordHasher
	tokens      *TokenService
	mailer      Mailer
	now         func() time.Time
}

func NewAuthService(
	userRepo domain.UserRepository,
	profileRepo domain.ProfileRepository,
	refreshRepo domain.RefreshTokenRepository,
	hasher PasswordHasher,
	tokens *TokenService,
	mailer Mailer,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		refreshRepo: refreshRepo,
		hasher:      hasher,
		tokens:      tokens,
		mailer:      mailer,
		now:         time.Now,
	}
}

// Register creates a user with an empty profile and logs them in. The welcome
// email is best effort: a delivery failure is logged, never surfaced.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrDuplicateEntity
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByUserName(ctx, in.UserName); err == nil {
		return nil, domain.ErrDuplicateEntity
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		PhoneNumber: in.PhoneNumber,
		Location:    in.Location,
		Website:     in.Website,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	user := &domain.User{
		UserName:     in.UserName,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		ProfileID:    profile.ID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	result, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcome(user.Email, user.UserName); err != nil {
			log.Error().Err(err).Str("email", user.Email).Msg("Failed to send welcome email")
		}
	}
	return result, nil
}

// Login verifies credentials and opens a fresh session. Both an unknown email
// and a wrong password produce ErrInvalidCredentials so the response does not
// reveal which field was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return s.startSession(ctx, user)
}

// startSession drops any prior refresh rows for the user, then issues a token
// pair under a new session id and records the refresh token in the ledger.
func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	if _, err := s.refreshRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	access, err := s.tokens.IssueAccessToken(user.ID, user.Email, sessionID)
	if err != nil {
		return nil, err
	}
	refresh, expiresAt, err := s.tokens.IssueRefreshToken(user.ID, sessionID)
	if err != nil {
		return nil, err
	}

	rec := &domain.RefreshTokenRecord{
		SessionID: sessionID,
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: expiresAt,
	}
	if err := s.refreshRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh rotates the token pair of a session. The presented token must match
// the ledger row for its session exactly: after a successful rotation the old
// refresh token is dead, so a replayed token fails the lookup.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.DecodeRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	rec, err := s.refreshRepo.GetByTokenAndSession(ctx, refreshToken, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, err
	}
	if rec.Expired(s.now()) {
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, err
	}

	access, err := s.tokens.IssueAccessToken(user.ID, user.Email, claims.SessionID)
	if err != nil {
		return nil, err
	}
	newRefresh, expiresAt, err := s.tokens.IssueRefreshToken(user.ID, claims.SessionID)
	if err != nil {
		return nil, err
	}

	replacement := &domain.RefreshTokenRecord{
		SessionID: claims.SessionID,
		UserID:    user.ID,
		Token:     newRefresh,
		ExpiresAt: expiresAt,
	}
	if err := s.refreshRepo.Replace(ctx, replacement); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: newRefresh}, nil
}

// Verify validates an access token and resolves the user it belongs to.
func (s *AuthService) Verify(ctx context.Context, accessToken string) (*domain.User, *AccessClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.userRepo.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrUnauthorized
		}
		return nil, nil, err
	}
	return user, claims, nil
}

// Logout terminates the user's session by removing its refresh ledger rows.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	_, err := s.refreshRepo.DeleteByUserID(ctx, userID)
	return err
}

// ServerToken issues a non-expiring machine token for the given user. The
// caller is responsible for restricting access to this operation.
func (s *AuthService) ServerToken(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.tokens.IssueServerToken(user.ID, user.Email)
}
