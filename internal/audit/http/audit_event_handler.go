// Package http exposes the audit trail for review.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/phivault/internal/audit/http/dto"
	auditUseCase "github.com/allisson/phivault/internal/audit/usecase"
	"github.com/allisson/phivault/internal/httputil"
)

// AuditEventHandler serves audit event listings.
type AuditEventHandler struct {
	auditEventUseCase auditUseCase.AuditEventUseCase
	logger            *slog.Logger
}

// NewAuditEventHandler creates an AuditEventHandler.
func NewAuditEventHandler(
	auditEventUseCase auditUseCase.AuditEventUseCase,
	logger *slog.Logger,
) *AuditEventHandler {
	return &AuditEventHandler{
		auditEventUseCase: auditEventUseCase,
		logger:            logger,
	}
}

// ListHandler returns audit events newest first.
// GET /v1/audit-events?offset=0&limit=50&created_at_from=2026-02-01T00:00:00Z&created_at_to=2026-02-14T23:59:59Z
// Both time bounds are optional and inclusive. The log sink cannot be listed and answers 422.
func (h *AuditEventHandler) ListHandler(c *gin.Context) {
	query, err := httputil.ParseListQuery(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	events, err := h.auditEventUseCase.List(c.Request.Context(), query.Offset, query.Limit, query.From, query.To)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditEventsToListResponse(events))
}
