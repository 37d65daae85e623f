// Package handler implements the console HTTP API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/console/internal/domain/shared"
	"github.com/storefront/console/internal/infrastructure/logger"
	"github.com/storefront/console/internal/interfaces/http/dto"
	"github.com/storefront/console/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// domainErrorer is implemented by errors that carry their own DomainError
type domainErrorer interface {
	DomainError() *shared.DomainError
}

// getRequestID extracts the request ID from the context or the request header
func getRequestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize, totalPages int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize, totalPages))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unavailable sends a 503 response for a component that is not running
func (h *BaseHandler) Unavailable(c *gin.Context, message string) {
	h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts service errors to HTTP responses.
//
// Remote failures answer 502, except that an upstream 4xx keeps its status and message so the
// operator sees why the store refused. Domain errors map through their code.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var remoteErr *shared.RemoteError
	if errors.As(err, &remoteErr) {
		if remoteErr.StatusCode == http.StatusNotFound {
			h.NotFound(c, remoteErr.Message)
			return
		}
		status := http.StatusBadGateway
		if remoteErr.StatusCode >= 400 && remoteErr.StatusCode < 500 {
			status = remoteErr.StatusCode
		}
		message := remoteErr.Message
		if message == "" {
			message = shared.ErrRemote.Message
		}
		h.Error(c, status, dto.ErrCodeRemote, message)
		return
	}

	var carrier domainErrorer
	if errors.As(err, &carrier) {
		h.handleDomainError(c, carrier.DomainError())
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.handleDomainError(c, domainErr)
		return
	}

	if errors.Is(err, context.Canceled) {
		// client went away; nobody reads the body
		c.Status(499)
		return
	}

	logger.GetGinLogger(c).Error("Unhandled handler error", zap.Error(err))
	h.InternalError(c, "An unexpected error occurred")
}

func (h *BaseHandler) handleDomainError(c *gin.Context, domainErr *shared.DomainError) {
	code := dto.NormalizeErrorCode(domainErr.Code)
	h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
}
