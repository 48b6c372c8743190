package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireMutator rejects callers that can mutate nothing: neither admins
// nor owners of a teacher slug.  Finer checks (which teacher, admin only
// catalogs) happen in the scheduling layer.
func RequireMutator() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFrom(c)
			if !id.IsAdmin && id.TeacherSlug == "" {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireAdmin lets only admins through.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IdentityFrom(c).IsAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
