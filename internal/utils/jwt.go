package utils // package utils mints the access tokens the API accepts

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the "role" claim.
const (
	RoleAdmin   = "ADMIN"
	RoleTeacher = "TEACHER"
)

// AccessToken is a signed JWT and its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken signs an HS256 token.  Teacher tokens must name the
// teacher slug they own; admin tokens may leave it empty.
func NewAccessToken(secret, subject, role, teacherSlug string, ttl time.Duration) (AccessToken, error) {
	if role != RoleAdmin && role != RoleTeacher {
		return AccessToken{}, errors.New("role must be ADMIN or TEACHER")
	}
	if role == RoleTeacher && teacherSlug == "" {
		return AccessToken{}, errors.New("teacher tokens need a teacher slug")
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	if teacherSlug != "" {
		claims["teacher_slug"] = teacherSlug
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
