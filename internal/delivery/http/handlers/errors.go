package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/LavaJover/shvark-mypvit-relay/internal/delivery/http/dto/payment/response"
	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/gin-gonic/gin"
)

// statusOf maps a use-case error to the HTTP status returned to the caller.
func statusOf(err error) int {
	var gerr *domain.GatewayError
	switch {
	case errors.Is(err, domain.ErrValidationFailed):
		if errors.As(err, &gerr) && gerr.StatusCode == http.StatusUnprocessableEntity {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAuthenticationFailed),
		errors.Is(err, domain.ErrCallbackNotActivated),
		errors.Is(err, domain.ErrGatewayRejected):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrGatewayUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	code := statusOf(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err.Error())
		message = "internal error"
	}
	c.JSON(code, response.ErrorResponse{
		Success: false,
		Message: message,
		Errors:  domain.FieldMessages(err),
	})
}

func badRequest(c *gin.Context, message string, fields ...string) {
	c.JSON(http.StatusBadRequest, response.ErrorResponse{
		Success: false,
		Message: message,
		Errors:  fields,
	})
}
