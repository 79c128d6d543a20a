package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cacheUseCase "github.com/allisson/phivault/internal/cache/usecase"
	"github.com/allisson/phivault/internal/field/http/dto"
	"github.com/allisson/phivault/internal/httputil"
	customValidation "github.com/allisson/phivault/internal/validation"
)

// CacheHandler serves invalidation and statistics requests.
type CacheHandler struct {
	cache  cacheUseCase.DecryptionCache
	logger *slog.Logger
}

// NewCacheHandler creates a CacheHandler.
func NewCacheHandler(cache cacheUseCase.DecryptionCache, logger *slog.Logger) *CacheHandler {
	return &CacheHandler{cache: cache, logger: logger}
}

// InvalidateHandler drops every cached field of one record.
// POST /v1/cache/invalidate
func (h *CacheHandler) InvalidateHandler(c *gin.Context) {
	var req dto.InvalidateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	removed, err := h.cache.Invalidate(c.Request.Context(), req.ResourceID, req.ResourceType, req.Context.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.InvalidateResponse{Removed: removed})
}

// InvalidateUserHandler drops everything cached for one user.
// POST /v1/cache/invalidate-user
func (h *CacheHandler) InvalidateUserHandler(c *gin.Context) {
	var req dto.InvalidateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	removed, err := h.cache.InvalidateUser(c.Request.Context(), req.UserID, req.OrganizationID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.InvalidateResponse{Removed: removed})
}

// StatsHandler returns the cache counters.
// GET /v1/cache/stats
func (h *CacheHandler) StatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MapStatsToResponse(h.cache.Metrics()))
}
