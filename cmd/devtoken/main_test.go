package main

import (
	"testing"
	"time"

	"github.com/richxcame/fraud-registry/pkg/jwtkeys"
	"github.com/richxcame/fraud-registry/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMint(t *testing.T) {
	provider := jwtkeys.NewStaticProvider("dev-secret")

	token, err := mint(provider, "admin@example.com", "Admin", middleware.RoleAdmin, time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := middleware.ParseToken(provider, token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "Admin", claims.Name)
	assert.Equal(t, middleware.RoleAdmin, claims.Role)
}

func TestMint_Expired(t *testing.T) {
	provider := jwtkeys.NewStaticProvider("dev-secret")

	token, err := mint(provider, "driver@example.com", "", middleware.RoleMember, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = middleware.ParseToken(provider, token)
	assert.Error(t, err)
}

func TestMint_Rejects(t *testing.T) {
	provider := jwtkeys.NewStaticProvider("dev-secret")

	_, err := mint(provider, "driver@example.com", "", middleware.Role("root"), time.Hour, time.Now())
	assert.Error(t, err)

	_, err = mint(provider, "", "", middleware.RoleMember, time.Hour, time.Now())
	assert.Error(t, err)
}

func TestLifetime(t *testing.T) {
	assert.Equal(t, 30*time.Minute, lifetime(30*time.Minute, 24))
	assert.Equal(t, 24*time.Hour, lifetime(0, 24))
}
