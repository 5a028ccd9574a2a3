package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/apperr"
	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/service"
)

type AuthHandler struct {
	Svc     *service.AuthService
	Cookies CookiePolicy
}

func httpError(err error) error {
	return echo.NewHTTPError(apperr.StatusOf(err), apperr.MessageOf(err))
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("register rejected", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validateRegister(req.Email, req.Password, req.FirstName, req.LastName); err != nil {
		l.Warn("register rejected", "status", 400, "error", err)
		return httpError(err)
	}

	user, err := h.Svc.Register(ctx, service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login rejected", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validateLogin(req.Email, req.Password); err != nil {
		l.Warn("login rejected", "status", 400, "error", err)
		return httpError(err)
	}

	// A cookie left over from a previous session on this device gets
	// superseded rather than piling up in the live set.
	staleToken := ""
	if ck, err := c.Cookie(RefreshCookieName); err == nil {
		staleToken = ck.Value
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password, staleToken)
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(h.Cookies.RefreshCookie(res.RefreshToken, h.Svc.RefreshTTL))

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken": res.AccessToken,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	ck, err := c.Cookie(RefreshCookieName)
	if err != nil || ck.Value == "" {
		c.SetCookie(h.Cookies.DeleteRefreshCookie())
		return echo.NewHTTPError(http.StatusUnauthorized, "cookie not provided")
	}

	res, err := h.Svc.Refresh(ctx, ck.Value)
	if err != nil {
		c.SetCookie(h.Cookies.DeleteRefreshCookie())
		return httpError(err)
	}

	c.SetCookie(h.Cookies.RefreshCookie(res.RefreshToken, h.Svc.RefreshTTL))

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken": res.AccessToken,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	ck, err := c.Cookie(RefreshCookieName)
	if err != nil || ck.Value == "" {
		return c.NoContent(http.StatusNoContent)
	}

	c.SetCookie(h.Cookies.DeleteRefreshCookie())

	removed, err := h.Svc.Logout(ctx, ck.Value)
	if err != nil {
		return httpError(err)
	}
	if !removed {
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "logged out",
	})
}

func validateRegister(email, password, firstName, lastName string) error {
	if err := validateLogin(email, password); err != nil {
		return err
	}
	if l := len(strings.TrimSpace(firstName)); l < 3 || l > 40 {
		return apperr.BadRequest("firstName must be 3-40 characters")
	}
	if l := len(strings.TrimSpace(lastName)); l < 3 || l > 40 {
		return apperr.BadRequest("lastName must be 3-40 characters")
	}
	return nil
}

func validateLogin(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > 50 || !strings.Contains(email, "@") {
		return apperr.BadRequest("a valid email is required")
	}
	if len(password) < 6 || len(password) > 100 {
		return apperr.BadRequest("password must be 6-100 characters")
	}
	return nil
}
