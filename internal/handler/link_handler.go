package handler

import (
	"fmt"
	"net/http"

	"github.com/Difraya/only-for-tests-short-links/internal/middleware"
	"github.com/Difraya/only-for-tests-short-links/internal/models"
	"github.com/Difraya/only-for-tests-short-links/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LinkHandler struct {
	service        service.LinkService
	clickProcessor service.ClickProcessor
	baseURL        string
	logger         *zap.Logger
}

func NewLinkHandler(service service.LinkService, clickProcessor service.ClickProcessor, baseURL string, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		service:        service,
		clickProcessor: clickProcessor,
		baseURL:        baseURL,
		logger:         logger,
	}
}

type LinkResponse struct {
	models.Link
	ShortURL string `json:"short_url"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *LinkHandler) response(link *models.Link) LinkResponse {
	return LinkResponse{
		Link:     *link,
		ShortURL: h.baseURL + "/" + link.ShortCode,
	}
}

// CreateLink godoc
// @Summary Create a short link
// @Description Shorten a URL with a generated code or a custom alias
// @Tags links
// @Accept json
// @Produce json
// @Param request body models.CreateLinkInput true "Link creation request"
// @Success 201 {object} LinkResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/links/shorten [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Could not validate credentials",
		})
		return
	}

	var input models.CreateLinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	link, err := h.service.CreateLink(c.Request.Context(), user.ID, &input)
	if err != nil {
		switch err {
		case service.ErrAliasTaken:
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "alias_taken",
				Message: "Custom alias already exists",
			})
		default:
			h.logger.Error("Failed to create link", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to create link",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, h.response(link))
}

// Redirect godoc
// @Summary Redirect to original URL
// @Description Resolve a short code or custom alias and redirect
// @Tags links
// @Produce json
// @Param code path string true "Short code or alias"
// @Success 307 {object} nil
// @Failure 404 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /{code} [get]
func (h *LinkHandler) Redirect(c *gin.Context) {
	code := c.Param("code")

	link, err := h.service.ResolveForRedirect(c.Request.Context(), code)
	if err != nil {
		switch err {
		case service.ErrLinkExpired:
			c.JSON(http.StatusGone, ErrorResponse{
				Error:   "expired",
				Message: "Link expired",
			})
		case service.ErrLinkNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Link not found",
			})
		default:
			h.logger.Error("Failed to resolve link", zap.String("code", code), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to resolve link",
			})
		}
		return
	}

	// Асинхронная запись детальной статистики
	event := &models.ClickEvent{
		LinkID:    link.ID,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referer:   c.Request.Referer(),
	}
	if err := h.clickProcessor.RecordClick(c.Request.Context(), event); err != nil {
		h.logger.Debug("Failed to record click (non-blocking)", zap.Error(err))
	}

	c.Redirect(http.StatusTemporaryRedirect, link.OriginalURL)
}

// GetStats godoc
// @Summary Get link statistics
// @Description Link record with its click counter
// @Tags links
// @Produce json
// @Param code path string true "Short code or alias"
// @Success 200 {object} LinkResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links/{code}/stats [get]
func (h *LinkHandler) GetStats(c *gin.Context) {
	code := c.Param("code")

	link, err := h.service.GetStats(c.Request.Context(), code)
	if err != nil {
		if err == service.ErrLinkNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Link not found",
			})
			return
		}
		h.logger.Error("Failed to get stats", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to get stats",
		})
		return
	}

	c.JSON(http.StatusOK, h.response(link))
}

// GetDailyStats godoc
// @Summary Get daily click statistics
// @Tags links
// @Produce json
// @Param code path string true "Short code or alias"
// @Param days query int false "Number of days" default(7)
// @Success 200 {array} models.DailyClickStats
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links/{code}/stats/daily [get]
func (h *LinkHandler) GetDailyStats(c *gin.Context) {
	code := c.Param("code")

	days := 7
	if d := c.Query("days"); d != "" {
		if _, err := fmt.Sscanf(d, "%d", &days); err != nil || days < 1 || days > 90 {
			days = 7
		}
	}

	stats, err := h.clickProcessor.GetDailyStats(c.Request.Context(), code, days)
	if err != nil {
		if err == service.ErrLinkNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Link not found",
			})
			return
		}
		h.logger.Error("Failed to get daily stats", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to get daily stats",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// UpdateLink godoc
// @Summary Update a link
// @Description Partial update of target URL and expiry; owner only
// @Tags links
// @Accept json
// @Produce json
// @Param code path string true "Short code or alias"
// @Param request body models.UpdateLinkInput true "Fields to update"
// @Success 200 {object} LinkResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links/{code} [put]
func (h *LinkHandler) UpdateLink(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Could not validate credentials",
		})
		return
	}

	code := c.Param("code")

	var patch models.UpdateLinkInput
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	link, err := h.service.UpdateLink(c.Request.Context(), user.ID, code, &patch)
	if err != nil {
		switch err {
		case service.ErrLinkNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Link not found",
			})
		case service.ErrNotOwner:
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "Not authorized to update this link",
			})
		default:
			h.logger.Error("Failed to update link", zap.String("code", code), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to update link",
			})
		}
		return
	}

	c.JSON(http.StatusOK, h.response(link))
}

// DeleteLink godoc
// @Summary Delete a link
// @Description Permanently remove a link; owner only
// @Tags links
// @Produce json
// @Param code path string true "Short code or alias"
// @Success 204 {object} nil
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links/{code} [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Could not validate credentials",
		})
		return
	}

	code := c.Param("code")

	err := h.service.DeleteLink(c.Request.Context(), user.ID, code)
	if err != nil {
		switch err {
		case service.ErrLinkNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Link not found",
			})
		case service.ErrNotOwner:
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "Not authorized to delete this link",
			})
		default:
			h.logger.Error("Failed to delete link", zap.String("code", code), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to delete link",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
