package session

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/fraud-registry/pkg/middleware"
	"github.com/stretchr/testify/assert"
)

func newContext() *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	return c
}

func TestFromGin_Anonymous(t *testing.T) {
	s := FromGin(newContext())
	assert.False(t, s.Authenticated)
	assert.Equal(t, Anonymous, s)
}

func TestFromGin_Authenticated(t *testing.T) {
	c := newContext()
	c.Set(middleware.UserIDKey, uuid.New())
	c.Set(middleware.UserEmailKey, "driver@example.com")
	c.Set(middleware.UserNameKey, "Dana")
	c.Set(middleware.UserRoleKey, middleware.RoleMember)

	s := FromGin(c)
	assert.True(t, s.Authenticated)
	assert.Equal(t, "driver@example.com", s.Identity)
	assert.Equal(t, "Dana", s.DisplayName)
	assert.False(t, s.IsAdmin())
}

func TestFromGin_DisplayNameFallsBackToIdentity(t *testing.T) {
	c := newContext()
	c.Set(middleware.UserIDKey, uuid.New())
	c.Set(middleware.UserEmailKey, "admin@example.com")
	c.Set(middleware.UserRoleKey, middleware.RoleAdmin)

	s := FromGin(c)
	assert.Equal(t, "admin@example.com", s.DisplayName)
	assert.True(t, s.IsAdmin())
}

func TestFromGin_MissingEmail(t *testing.T) {
	c := newContext()
	c.Set(middleware.UserIDKey, uuid.New())

	assert.False(t, FromGin(c).Authenticated)
}
