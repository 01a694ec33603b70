// Package handler implements the HTTP handlers of the portal API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vertinimas/portal/internal/domain/shared"
	"github.com/vertinimas/portal/internal/infrastructure/logger"
	"github.com/vertinimas/portal/internal/interfaces/http/dto"
	"github.com/vertinimas/portal/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Deleted confirms a removal
func (h *BaseHandler) Deleted(c *gin.Context, id uuid.UUID) {
	h.Success(c, dto.DeletedResponse{ID: id.String(), Deleted: true})
}

// Error sends a localized error response. key selects the message, code the
// status.
func (h *BaseHandler) Error(c *gin.Context, code, key string, args ...any) {
	status := dto.GetHTTPStatus(code)
	msg := middleware.Message(c, key, code, "", args...)
	c.JSON(status, dto.NewErrorResponse(code, msg, middleware.GetRequestID(c)))
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	msg := middleware.Message(c, dto.ErrCodeValidation, dto.ErrCodeValidation, "Request validation failed")
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(msg, middleware.GetRequestID(c), details))
}

// HandleError converts service errors to HTTP responses. Domain errors keep
// their category and localized reason; anything else is logged and hidden
// behind a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		status := dto.GetHTTPStatus(code)
		msg := middleware.Message(c, domainErr.Reason, code, domainErr.Error(), domainErr.Args...)
		if status >= http.StatusInternalServerError {
			logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
		}
		c.JSON(status, dto.NewErrorResponse(code, msg, middleware.GetRequestID(c)))
		return
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.Error(c, dto.ErrCodeTooLarge, dto.ErrCodeTooLarge)
		return
	}

	logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
	h.Error(c, dto.ErrCodeInternal, dto.ErrCodeInternal)
}

// bindError answers a failed ShouldBind call
func (h *BaseHandler) bindError(c *gin.Context, err error, code string) {
	if details := middleware.ValidationDetails(c, err); details != nil {
		h.ValidationError(c, details)
		return
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.Error(c, dto.ErrCodeTooLarge, dto.ErrCodeTooLarge)
		return
	}
	h.Error(c, code, code)
}

// bindJSON decodes and validates the JSON body, answering the request when
// that fails
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.bindError(c, err, dto.ErrCodeInvalidJSON)
		return false
	}
	return true
}

// bindQuery decodes and validates query parameters
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.bindError(c, err, dto.ErrCodeBadRequest)
		return false
	}
	return true
}

// pathID parses the :id path parameter
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		msg := middleware.Message(c, "validation.uuid", dto.ErrCodeValidation, "Invalid UUID format")
		h.ValidationError(c, []dto.ValidationDetail{{Field: "id", Message: msg}})
		return uuid.Nil, false
	}
	return id, true
}

// currentUserID returns the authenticated user, answering 401 when missing
func (h *BaseHandler) currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserUUID(c)
	if !ok {
		h.Error(c, dto.ErrCodeUnauthorized, "auth.unauthenticated")
		return uuid.Nil, false
	}
	return id, true
}
