package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/richxcame/fraud-registry/pkg/common"
	"github.com/richxcame/fraud-registry/pkg/jwtkeys"
)

// Role is the caller's role carried in the session token
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Gin context keys set by the auth middleware
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserNameKey  = "user_name"
	UserRoleKey  = "user_role"
)

// Claims represents the JWT claims of a signed-in driver
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name,omitempty"`
	Role   Role      `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates tokens signed with a single shared secret
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return AuthMiddlewareWithProvider(jwtkeys.NewStaticProvider(jwtSecret))
}

// AuthMiddlewareWithProvider validates JWT tokens, resolving the key by the kid header
func AuthMiddlewareWithProvider(provider jwtkeys.KeyProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "authorization required")
			c.Abort()
			return
		}

		claims, err := ParseToken(provider, tokenString)
		if err != nil {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserNameKey, claims.Name)
		c.Set(UserRoleKey, claims.Role)

		c.Next()
	}
}

// ParseToken verifies an HS256 token and returns its claims
func ParseToken(provider jwtkeys.KeyProvider, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		kid, _ := token.Header["kid"].(string)
		return provider.ResolveKey(kid)
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Email == "" {
		return nil, errors.New("token has no email claim")
	}
	return claims, nil
}

// SignToken issues a token for claims using the provider's active key
func SignToken(provider jwtkeys.KeyProvider, claims Claims) (string, error) {
	kid, secret, err := provider.SigningKey()
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	return token.SignedString(secret)
}

// RequireRole rejects callers whose token does not carry one of roles
func RequireRole(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			common.ErrorResponse(c, http.StatusUnauthorized, "authorization required")
			c.Abort()
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		common.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
		c.Abort()
	}
}

// GetUserID returns the authenticated user's id
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, errors.New("user not authenticated")
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("invalid user id in context")
	}
	return id, nil
}

// GetUserEmail returns the authenticated user's email
func GetUserEmail(c *gin.Context) string {
	return c.GetString(UserEmailKey)
}

// GetUserName returns the display name from the token, if any
func GetUserName(c *gin.Context) string {
	return c.GetString(UserNameKey)
}

// GetUserRole returns the authenticated user's role
func GetUserRole(c *gin.Context) (Role, bool) {
	v, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(Role)
	return role, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return c.Query("token")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
