package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/socialkit-dev/identity/domain"
	"github.com/socialkit-dev/identity/services"
)

// ListUsersHandler returns all users. Admin only.
func (a *IdentityAPI) ListUsersHandler(c echo.Context) error {
	users, err := a.users.FindAll(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	return c.JSON(http.StatusOK, views)
}

// GetUserHandler returns one user with their profile.
func (a *IdentityAPI) GetUserHandler(c echo.Context) error {
	got, err := a.users.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, userWithProfileView{
		userView: toUserView(got.User),
		Profile:  toProfileView(got.Profile),
	})
}

// UpdateUserHandler applies a sparse patch to a user and their profile.
// Absent fields are left untouched.
func (a *IdentityAPI) UpdateUserHandler(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}

	in := services.UpdateUserInput{
		User: domain.UserPatch{
			UserName:  req.UserName,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		},
		Profile: domain.ProfilePatch{
			DateOfBirth: req.DateOfBirth,
			PhoneNumber: req.PhoneNumber,
			Location:    req.Location,
			Website:     req.Website,
			PictureURL:  req.PictureURL,
		},
	}

	got, err := a.users.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, userWithProfileView{
		userView: toUserView(got.User),
		Profile:  toProfileView(got.Profile),
	})
}

// ListAccountsHandler returns the user's connected social accounts, without
// token material.
func (a *IdentityAPI) ListAccountsHandler(c echo.Context) error {
	accounts, err := a.users.ListConnectedAccounts(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, accounts)
}
