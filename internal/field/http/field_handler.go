// Package http exposes field encryption and the decryption cache over HTTP for services
// that run phivault as a sidecar.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cacheUseCase "github.com/allisson/phivault/internal/cache/usecase"
	cryptoUseCase "github.com/allisson/phivault/internal/crypto/usecase"
	"github.com/allisson/phivault/internal/field/http/dto"
	"github.com/allisson/phivault/internal/httputil"
	customValidation "github.com/allisson/phivault/internal/validation"
)

// FieldHandler serves encrypt and decrypt requests.
type FieldHandler struct {
	fieldCipher cryptoUseCase.FieldCipher
	cache       cacheUseCase.DecryptionCache
	logger      *slog.Logger
}

// NewFieldHandler creates a FieldHandler. Decryption goes through cache.
func NewFieldHandler(
	fieldCipher cryptoUseCase.FieldCipher,
	cache cacheUseCase.DecryptionCache,
	logger *slog.Logger,
) *FieldHandler {
	return &FieldHandler{
		fieldCipher: fieldCipher,
		cache:       cache,
		logger:      logger,
	}
}

// EncryptHandler seals one value.
// POST /v1/fields/encrypt - returns 200 with the envelope.
func (h *FieldHandler) EncryptHandler(c *gin.Context) {
	var req dto.EncryptFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	value, err := req.DecodedValue()
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid value: %w", err), h.logger)
		return
	}

	envelope, err := h.fieldCipher.EncryptField(c.Request.Context(), value, req.Context.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.EncryptFieldResponse{Envelope: envelope})
}

// DecryptHandler opens one envelope through the decryption cache.
// POST /v1/fields/decrypt - returns 200 with the value. Tampered or malformed envelopes
// are 500 without detail.
func (h *FieldHandler) DecryptHandler(c *gin.Context) {
	var req dto.DecryptFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	fc := req.Context.ToDomain()
	value, err := h.cache.GetOrDecrypt(
		c.Request.Context(),
		req.Envelope,
		fc,
		func(ctx context.Context, envelope string) (string, error) {
			return h.fieldCipher.DecryptField(ctx, envelope, fc)
		},
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.DecryptFieldResponse{Value: value})
}
