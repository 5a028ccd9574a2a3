package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/service"
)

type UserHandler struct {
	Svc *service.UserService
}

func pathUUID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid uuid")
	}
	return id, nil
}

func (h *UserHandler) GetAll(c echo.Context) error {
	users, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count": len(users),
		"users": users,
	})
}

func (h *UserHandler) GetByUUID(c echo.Context) error {
	id, err := pathUUID(c)
	if err != nil {
		return err
	}

	user, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateInfo(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_update")

	id, err := pathUUID(c)
	if err != nil {
		return err
	}

	var req struct {
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update rejected", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.UpdateInfo(ctx, id, service.UpdateInfoInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "user successfully updated",
	})
}

func (h *UserHandler) UpdatePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_update_password")

	id, err := pathUUID(c)
	if err != nil {
		return err
	}

	var req struct {
		Password    string `json:"password"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("password update rejected", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.NewPassword) < 6 || len(req.NewPassword) > 100 {
		return echo.NewHTTPError(http.StatusBadRequest, "password must be 6-100 characters")
	}

	if err := h.Svc.UpdatePassword(ctx, id, req.Password, req.NewPassword); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "user password successfully updated",
	})
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathUUID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "user successfully deleted",
	})
}
