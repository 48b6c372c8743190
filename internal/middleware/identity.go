package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lesson-scheduler/internal/model"
)

const identityKey = "identity"

func setIdentity(c echo.Context, id model.Identity) { c.Set(identityKey, id) }

// IdentityFrom returns the identity stored by JWTAuth.  The zero identity
// (no admin rights, no teacher slug) is returned for anonymous requests.
func IdentityFrom(c echo.Context) model.Identity {
	id, _ := c.Get(identityKey).(model.Identity)
	return id
}

// userID returns the token subject, or "guest" for anonymous requests.
func userID(c echo.Context) string {
	if s := IdentityFrom(c).Subject; s != "" {
		return s
	}
	return "guest"
}
