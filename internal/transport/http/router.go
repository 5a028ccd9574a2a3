package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/handlers"
	authmw "github.com/Skotchmaster/auth_service/internal/middleware/auth"
)

type Deps struct {
	AuthHandler *handlers.AuthHandler
	UserHandler *handlers.UserHandler
	Guard       *authmw.Guard
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	api.POST("/register", d.AuthHandler.Register)
	api.POST("/login", d.AuthHandler.Login)
	api.GET("/refresh", d.AuthHandler.Refresh)
	api.GET("/logout", d.AuthHandler.Logout)

	users := api.Group("/users", d.Guard.RequireAuth)

	users.GET("", d.UserHandler.GetAll)
	users.GET("/:uuid", d.UserHandler.GetByUUID)
	users.POST("/:uuid", d.UserHandler.UpdateInfo, authmw.RequireOwnerOrAdmin)
	users.POST("/update-password/:uuid", d.UserHandler.UpdatePassword, authmw.RequireOwnerOrAdmin)
	users.DELETE("/:uuid", d.UserHandler.Delete, authmw.RequireOwnerOrAdmin)
}
