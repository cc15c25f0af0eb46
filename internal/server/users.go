package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jsandh/splitbook/internal/auth"
	"github.com/jsandh/splitbook/internal/middleware"
	"github.com/jsandh/splitbook/internal/models"
)

// userBody wraps all user requests and responses.
type userBody[T any] struct {
	User T `json:"user"`
}

type newUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Image    string `json:"image,omitempty"`
	Token    string `json:"token"`
}

func (s *Server) userResponse(user *models.User) (userBody[userResponse], error) {
	token, err := s.jwt.Generate(user)
	if err != nil {
		return userBody[userResponse]{}, echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}
	return userBody[userResponse]{User: userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Image:    user.Image,
		Token:    token,
	}}, nil
}

func (s *Server) registerUser(c echo.Context) error {
	var req userBody[newUserRequest]
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.User.Username == "" || req.User.Email == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "username and email are required")
	}

	user, err := s.authn.Register(c.Request().Context(), req.User.Username, req.User.Email, req.User.Password)
	if err != nil {
		return httpError(err)
	}

	resp, err := s.userResponse(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) loginUser(c echo.Context) error {
	var req userBody[loginRequest]
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := s.authn.Authenticate(c.Request().Context(), req.User.Email, req.User.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
	}

	resp, err := s.userResponse(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) currentUser(c echo.Context) error {
	user, err := s.store.GetUserByID(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return httpError(err)
	}

	resp, err := s.userResponse(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) updateUser(c echo.Context) error {
	var req userBody[updateUserRequest]
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.User == (updateUserRequest{}) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "no fields to update")
	}

	ctx := c.Request().Context()
	user, err := s.store.GetUserByID(ctx, middleware.UserID(c))
	if err != nil {
		return httpError(err)
	}

	if req.User.Username != nil {
		user.Username = *req.User.Username
	}
	if req.User.Email != nil {
		user.Email = *req.User.Email
	}
	if req.User.Password != nil {
		hash, err := s.authn.HashCredential(*req.User.Password)
		if err != nil {
			return httpError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return httpError(err)
	}

	resp, err := s.userResponse(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
