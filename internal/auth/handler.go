package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"TaskFlow/internal/request"
)

type AuthHandler struct {
	service *UserService
}

func NewAuthHandler(service *UserService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.service.RegisterUser(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var cred Credential
	if err := request.Bind(c, &cred); err != nil {
		return err
	}
	res, err := h.service.AuthenticateUser(c.Request().Context(), cred)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	if err := h.service.ForgotPassword(c.Request().Context(), req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "If the account exists, a reset link has been sent"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	if err := h.service.ResetPassword(c.Request().Context(), req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password has been reset"})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	claims, err := CurrentUser(c)
	if err != nil {
		return err
	}
	user, err := h.service.GetUser(c.Request().Context(), claims.UserID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	claims, err := CurrentUser(c)
	if err != nil {
		return err
	}
	var req UpdateProfileRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateProfile(c.Request().Context(), claims.UserID(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) ListUsers(c echo.Context) error {
	dept, err := request.QueryID(c, "department")
	if err != nil {
		return err
	}
	active, err := request.QueryBool(c, "active")
	if err != nil {
		return err
	}
	f := UserFilter{
		Role:       c.QueryParam("role"),
		Department: dept,
		Active:     active,
		Query:      c.QueryParam("q"),
	}
	lo, err := request.ListOptions(c, UserSortFields...)
	if err != nil {
		return err
	}
	page, err := h.service.ListUsers(c.Request().Context(), f, lo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *AuthHandler) GetUser(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	user, err := h.service.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.service.CreateUser(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) UpdateUser(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateUser(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) DeleteUser(c echo.Context) error {
	claims, err := CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.Request().Context(), claims.UserID(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
