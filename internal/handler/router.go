package handler

import (
	"net/http"

	"github.com/Difraya/only-for-tests-short-links/internal/middleware"
	"github.com/Difraya/only-for-tests-short-links/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(
	linkService service.LinkService,
	authService service.AuthService,
	clickProcessor service.ClickProcessor,
	rateLimiter *middleware.RateLimiter,
	baseURL string,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(rateLimiter.Middleware())

	linkHandler := NewLinkHandler(linkService, clickProcessor, baseURL, logger)
	authHandler := NewAuthHandler(authService, logger)

	// API v1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", HealthCheck)

		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/jwt/login", authHandler.Login)

		// Всё прочее только для аутентифицированных пользователей
		authed := v1.Group("", middleware.RequireAuth(authService))
		{
			authed.GET("/auth/users/me", authHandler.Me)
			authed.POST("/links/shorten", linkHandler.CreateLink)
			authed.GET("/links/:code/stats", linkHandler.GetStats)
			authed.GET("/links/:code/stats/daily", linkHandler.GetDailyStats)
			authed.PUT("/links/:code", linkHandler.UpdateLink)
			authed.DELETE("/links/:code", linkHandler.DeleteLink)
		}
	}

	// Редирект (корневой путь) - публичный
	router.GET("/:code", linkHandler.Redirect)

	return router
}

// HealthCheck godoc
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/v1/health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
