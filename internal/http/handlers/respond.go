package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/healthmate/internal/service"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

// withTimeout bounds store work while keeping the request's trace and request id.
func withTimeout(ctx *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), d)
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondMessage(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusOK, gin.H{"message": message})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnauthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, "forbidden", message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// respondServiceError maps the service error taxonomy onto HTTP. notFound is
// the message used when the missing thing is the request's subject.
func respondServiceError(ctx *gin.Context, err error, notFound, internal string) {
	switch {
	case errors.Is(err, service.ErrConflict):
		RespondError(ctx, http.StatusBadRequest, "email_taken", "Email is already in use", nil)
	case errors.Is(err, service.ErrInvalidCredential):
		RespondError(ctx, http.StatusBadRequest, "invalid_credentials", "Current password is incorrect", nil)
	case errors.Is(err, service.ErrPasswordTooLong):
		RespondError(ctx, http.StatusBadRequest, "password_too_long", "Password must be at most 72 bytes", nil)
	case errors.Is(err, service.ErrInvalidID):
		RespondError(ctx, http.StatusBadRequest, "invalid_id", "Invalid spot id", nil)
	case errors.Is(err, service.ErrUnauthorized):
		RespondUnauthorized(ctx, "unauthorized", "Invalid token")
	case errors.Is(err, service.ErrForbidden):
		RespondForbidden(ctx, "Only the owner can modify this spot")
	case errors.Is(err, service.ErrNotFound):
		RespondNotFound(ctx, notFound)
	default:
		slog.ErrorContext(ctx.Request.Context(), "request failed", "route", ctx.FullPath(), "err", err)
		RespondInternal(ctx, internal)
	}
}
