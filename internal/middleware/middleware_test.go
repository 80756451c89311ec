package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Difraya/only-for-tests-short-links/internal/config"
	"github.com/Difraya/only-for-tests-short-links/internal/middleware"
	"github.com/Difraya/only-for-tests-short-links/internal/models"
	"github.com/Difraya/only-for-tests-short-links/internal/service"
	"github.com/Difraya/only-for-tests-short-links/internal/service/mocks"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newLimitedRouter(rl *middleware.RateLimiter, key func(*gin.Context) string) *gin.Engine {
	router := gin.New()
	if key != nil {
		router.Use(rl.MiddlewareWithKey(key))
	} else {
		router.Use(rl.Middleware())
	}
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

// TestRateLimiter_AllowsWithinBurst проверяет пропуск запросов в пределах burst
func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstSize:         5,
		CleanupInterval:   time.Minute,
	})
	router := newLimitedRouter(rl, nil)

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

// TestRateLimiter_BlocksOverBurst проверяет отказ после исчерпания burst
func TestRateLimiter_BlocksOverBurst(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         3,
		CleanupInterval:   time.Minute,
	})
	router := newLimitedRouter(rl, nil)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

// TestRateLimiter_KeysAreIsolated проверяет независимые вёдра для разных ключей
func TestRateLimiter_KeysAreIsolated(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         1,
		CleanupInterval:   time.Minute,
	})
	router := newLimitedRouter(rl, func(c *gin.Context) string {
		return c.GetHeader("X-Client-Key")
	})

	do := func(key string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Client-Key", key)
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("alice"))
	assert.Equal(t, http.StatusTooManyRequests, do("alice"))
	// Исчерпание ведра alice не задевает bob
	assert.Equal(t, http.StatusOK, do("bob"))
}

func setupAuthRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()

	userRepo := mocks.NewMockUserRepository()
	authService := service.NewAuthService(userRepo, config.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  30 * time.Minute,
	})

	ctx := context.Background()
	_, err := authService.Register(ctx, &models.RegisterInput{
		Email:    "user@example.com",
		Username: "user",
		Password: "password123",
	})
	require.NoError(t, err)

	token, err := authService.Login(ctx, "user@example.com", "password123")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", middleware.RequireAuth(authService), func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, user)
	})

	return router, token
}

// TestRequireAuth_ValidToken проверяет доступ с валидным токеном
func TestRequireAuth_ValidToken(t *testing.T) {
	router, token := setupAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user@example.com")
	// Хэш пароля не утекает в ответ
	assert.NotContains(t, w.Body.String(), "hashed_password")
}

// TestRequireAuth_MissingHeader проверяет запрос без Authorization
func TestRequireAuth_MissingHeader(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing_token")
}

// TestRequireAuth_MalformedHeader проверяет заголовок без схемы Bearer
func TestRequireAuth_MalformedHeader(t *testing.T) {
	router, token := setupAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing_token")
}

// TestRequireAuth_InvalidToken проверяет мусорный токен
func TestRequireAuth_InvalidToken(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_token")
}
