package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/richxcame/fraud-registry/pkg/jwtkeys"
	"github.com/richxcame/fraud-registry/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

const testJWTSecret = "test-secret-key-for-testing-only"

func init() {
	gin.SetMode(gin.TestMode)
}

func generateTestToken(t *testing.T, provider jwtkeys.KeyProvider, role Role, ttl time.Duration) string {
	t.Helper()
	token, err := SignToken(provider, Claims{
		UserID: uuid.New(),
		Email:  "driver@example.com",
		Name:   "Test Driver",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	require.NoError(t, err)
	return token
}

func setupAuthRouter(provider jwtkeys.KeyProvider) *gin.Engine {
	router := gin.New()
	api := router.Group("/api")
	api.Use(AuthMiddlewareWithProvider(provider))
	api.GET("/me", func(c *gin.Context) {
		id, err := GetUserID(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		role, _ := GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{
			"id":    id.String(),
			"email": GetUserEmail(c),
			"name":  GetUserName(c),
			"role":  string(role),
		})
	})
	admin := api.Group("/admin")
	admin.Use(RequireRole(RoleAdmin))
	admin.GET("", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return router
}

func doRequest(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_AcceptsValidToken(t *testing.T) {
	provider := jwtkeys.NewStaticProvider(testJWTSecret)
	router := setupAuthRouter(provider)
	token := generateTestToken(t, provider, RoleMember, time.Hour)

	w := doRequest(router, "/api/me", "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "driver@example.com")
	assert.Contains(t, w.Body.String(), "Test Driver")
}

func TestAuthMiddleware_QueryParamToken(t *testing.T) {
	provider := jwtkeys.NewStaticProvider(testJWTSecret)
	router := setupAuthRouter(provider)
	token := generateTestToken(t, provider, RoleMember, time.Hour)

	w := doRequest(router, "/api/me?token="+token, "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_RejectsInvalidTokens(t *testing.T) {
	provider := jwtkeys.NewStaticProvider(testJWTSecret)
	router := setupAuthRouter(provider)
	otherKey := jwtkeys.NewStaticProvider("another-secret")

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"invalid token format", "Bearer invalid-token"},
		{"missing Bearer prefix", "some-token"},
		{"empty Bearer token", "Bearer "},
		{"wrong prefix", "Basic some-token"},
		{"expired token", "Bearer " + generateTestToken(t, provider, RoleMember, -time.Hour)},
		{"foreign signature", "Bearer " + generateTestToken(t, otherKey, RoleMember, time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "/api/me", tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_RotatedKeys(t *testing.T) {
	legacy := jwtkeys.NewStaticProvider(testJWTSecret)
	rotated := jwtkeys.NewStaticProvider(testJWTSecret).WithKey("k2", "rotated-secret", true)
	router := setupAuthRouter(rotated)

	assert.Equal(t, http.StatusOK, doRequest(router, "/api/me", "Bearer "+generateTestToken(t, legacy, RoleMember, time.Hour)).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "/api/me", "Bearer "+generateTestToken(t, rotated, RoleMember, time.Hour)).Code)
}

func TestRequireRole(t *testing.T) {
	provider := jwtkeys.NewStaticProvider(testJWTSecret)
	router := setupAuthRouter(provider)

	member := doRequest(router, "/api/admin", "Bearer "+generateTestToken(t, provider, RoleMember, time.Hour))
	assert.Equal(t, http.StatusForbidden, member.Code)

	admin := doRequest(router, "/api/admin", "Bearer "+generateTestToken(t, provider, RoleAdmin, time.Hour))
	assert.Equal(t, http.StatusNoContent, admin.Code)
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	router := gin.New()
	router.GET("/admin", RequireRole(RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(router, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCorrelationID(t *testing.T) {
	router := gin.New()
	router.Use(CorrelationID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, logger.CorrelationIDFromContext(c.Request.Context()))
	})

	t.Run("generates an id when not provided", func(t *testing.T) {
		w := doRequest(router, "/test", "")
		id := w.Header().Get(CorrelationIDHeader)
		require.NotEmpty(t, id)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("keeps a provided id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(CorrelationIDHeader, "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Header().Get(CorrelationIDHeader))
		assert.Equal(t, "req-42", w.Body.String())
	})

	t.Run("replaces an unsafe id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(CorrelationIDHeader, "bad id\twith spaces")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		_, err := uuid.Parse(w.Header().Get(CorrelationIDHeader))
		assert.NoError(t, err)
	})
}

func TestValidCorrelationID(t *testing.T) {
	assert.True(t, validCorrelationID("req-42"))
	assert.False(t, validCorrelationID(""))
	assert.False(t, validCorrelationID("has space"))
	assert.False(t, validCorrelationID(strings.Repeat("a", 129)))
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := doRequest(router, "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestMaxBodySize(t *testing.T) {
	router := gin.New()
	router.Use(MaxBodySize(16))
	router.POST("/echo", func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"text":"this body is larger than the limit"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeaders())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(router, "/test", "")

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestMetrics(t *testing.T) {
	router := gin.New()
	router.Use(Metrics("fraud-registry-test"))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doRequest(router, "/test", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, "/missing", "").Code)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusCreated))
	assert.Equal(t, "4xx", statusClass(http.StatusUnauthorized))
	assert.Equal(t, "5xx", statusClass(http.StatusServiceUnavailable))
}

func TestRequestLevel(t *testing.T) {
	assert.Equal(t, zapcore.ErrorLevel, requestLevel("/api/v1/reports", http.StatusServiceUnavailable))
	assert.Equal(t, zapcore.WarnLevel, requestLevel("/api/v1/reports", http.StatusBadRequest))
	assert.Equal(t, zapcore.DebugLevel, requestLevel("/health/ready", http.StatusOK))
	assert.Equal(t, zapcore.DebugLevel, requestLevel("/metrics", http.StatusOK))
	assert.Equal(t, zapcore.InfoLevel, requestLevel("/api/v1/numbers/1112223333", http.StatusOK))
}
