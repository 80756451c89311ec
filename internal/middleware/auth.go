package middleware

import (
	"net/http"
	"strings"

	"github.com/Difraya/only-for-tests-short-links/internal/models"
	"github.com/Difraya/only-for-tests-short-links/internal/service"
	"github.com/gin-gonic/gin"
)

const currentUserKey = "current_user"

// RequireAuth middleware аутентификации по Bearer JWT.
// Проверенный пользователь кладётся в контекст запроса.
func RequireAuth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_token",
				"message": "Authorization: Bearer token is required",
			})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")

		user, err := auth.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Could not validate credentials",
			})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser извлекает аутентифицированного пользователя из контекста
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
