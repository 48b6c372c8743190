package middleware // package middleware holds the echo middleware shared by every route group

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lesson-scheduler/internal/model"
	"github.com/iliyamo/lesson-scheduler/internal/utils"
)

// JWTAuth validates a Bearer access token and stores the caller's
// model.Identity in the echo context.  The token is the output of the
// external identity provider: the role claim says whether the caller is an
// admin and teacher_slug names the teacher a non-admin owns.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			setIdentity(c, identityFromClaims(claims))
			return next(c)
		}
	}
}

func identityFromClaims(claims jwt.MapClaims) model.Identity {
	str := func(k string) string {
		v, _ := claims[k].(string)
		return strings.TrimSpace(v)
	}
	role := strings.ToUpper(str("role"))
	id := model.Identity{Subject: str("sub"), IsAdmin: role == utils.RoleAdmin}
	if role == utils.RoleTeacher || role == utils.RoleAdmin {
		id.TeacherSlug = str("teacher_slug")
	}
	return id
}
