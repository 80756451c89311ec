package handler

import (
	"net/http"

	"github.com/Difraya/only-for-tests-short-links/internal/middleware"
	"github.com/Difraya/only-for-tests-short-links/internal/models"
	"github.com/Difraya/only-for-tests-short-links/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service service.AuthService
	logger  *zap.Logger
}

func NewAuthHandler(service service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterInput true "Registration request"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	user, err := h.service.Register(c.Request.Context(), &input)
	if err != nil {
		if err == service.ErrEmailTaken {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "email_taken",
				Message: "Email already registered",
			})
			return
		}
		h.logger.Error("Failed to register user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to register user",
		})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary Exchange credentials for a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginInput true "Login request"
// @Success 200 {object} models.Token
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/jwt/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	token, err := h.service.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Incorrect email or password",
			})
			return
		}
		h.logger.Error("Failed to login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to login",
		})
		return
	}

	c.JSON(http.StatusOK, models.Token{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Me godoc
// @Summary Current authenticated user
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/users/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Could not validate credentials",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}
