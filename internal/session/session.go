// Package session describes the authenticated caller of a write request.
package session

import (
	"github.com/gin-gonic/gin"
	"github.com/richxcame/fraud-registry/pkg/middleware"
)

// Session is the caller as established by the auth middleware
type Session struct {
	Authenticated bool
	Identity      string
	DisplayName   string
	Role          middleware.Role
}

// Anonymous is the session of a caller without a valid token
var Anonymous = Session{}

// FromGin reads the session set by middleware.AuthMiddlewareWithProvider.
// The identity is the token's email; the display name falls back to it.
func FromGin(c *gin.Context) Session {
	if _, err := middleware.GetUserID(c); err != nil {
		return Anonymous
	}
	identity := middleware.GetUserEmail(c)
	if identity == "" {
		return Anonymous
	}

	name := middleware.GetUserName(c)
	if name == "" {
		name = identity
	}
	role, _ := middleware.GetUserRole(c)

	return Session{
		Authenticated: true,
		Identity:      identity,
		DisplayName:   name,
		Role:          role,
	}
}

// IsAdmin reports whether the caller may resolve review items
func (s Session) IsAdmin() bool {
	return s.Authenticated && s.Role == middleware.RoleAdmin
}
