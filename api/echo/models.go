package echo

import (
	"time"

	"github.com/socialkit-dev/identity/domain"
	"github.com/socialkit-dev/identity/services"
)

// userView is the external representation of a user. Credential material
// never appears here.
type userView struct {
	ID        string      `json:"id"`
	UserName  string      `json:"userName"`
	FirstName string      `json:"firstName,omitempty"`
	LastName  string      `json:"lastName,omitempty"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	ProfileID string      `json:"profileId,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func toUserView(u *domain.User) userView {
	return userView{
		ID:        u.ID,
		UserName:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		ProfileID: u.ProfileID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type profileView struct {
	ID          string     `json:"id"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
	Location    string     `json:"location,omitempty"`
	Website     string     `json:"website,omitempty"`
	PictureURL  string     `json:"pictureUrl,omitempty"`
}

func toProfileView(p *domain.Profile) *profileView {
	if p == nil {
		return nil
	}
	return &profileView{
		ID:          p.ID,
		DateOfBirth: p.DateOfBirth,
		PhoneNumber: p.PhoneNumber,
		Location:    p.Location,
		Website:     p.Website,
		PictureURL:  p.PictureURL,
	}
}

type userWithProfileView struct {
	userView
	Profile *profileView `json:"profile,omitempty"`
}

type authResponse struct {
	User         userView `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	// IsInWaitingList is kept for client compatibility. Signups are always
	// admitted immediately, so it is always false.
	IsInWaitingList bool `json:"isInWaitingList"`
}

func toAuthResponse(r *services.AuthResult) authResponse {
	return authResponse{
		User:         toUserView(r.User),
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
	}
}

type registerRequest struct {
	UserName    string `json:"userName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Location    string `json:"location"`
	Website     string `json:"website"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type serverTokenRequest struct {
	UserID string `json:"userId"`
}

type updateUserRequest struct {
	UserName    *string    `json:"userName"`
	FirstName   *string    `json:"firstName"`
	LastName    *string    `json:"lastName"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	PhoneNumber *string    `json:"phoneNumber"`
	Location    *string    `json:"location"`
	Website     *string    `json:"website"`
	PictureURL  *string    `json:"pictureUrl"`
}

type createOrderRequest struct {
	ProductID string `json:"productId"`
	Gateway   string `json:"gateway"`
}

type orderView struct {
	ID               string             `json:"id"`
	Gateway          domain.Gateway     `json:"gateway"`
	GatewayOrderID   string             `json:"gatewayOrderId"`
	ProductID        string             `json:"productId"`
	Receipt          string             `json:"receipt"`
	Amount           int64              `json:"amount"`
	Currency         string             `json:"currency"`
	Status           domain.OrderStatus `json:"status"`
	PaymentSessionID string             `json:"paymentSessionId,omitempty"`
}
