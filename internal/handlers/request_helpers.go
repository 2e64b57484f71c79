package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/guard"
	"storefront/internal/httpclient"
	"storefront/internal/models"
	"storefront/internal/state"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		slog.Error("panic recovered", "route", route, "panic", r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	slog.Info("returning error", "route", route, "status", status, "error", message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondAPIError maps a state or backend failure onto a console response. A
// rejected session sends the browser to the login screen.
func respondAPIError(c *gin.Context, route string, err error) {
	var validationErr *models.ValidationError
	switch {
	case httpclient.IsLoginRedirect(err):
		slog.Info("session rejected, redirecting to login", "route", route)
		c.Redirect(http.StatusFound, guard.LoginPath)
		c.Abort()
	case errors.As(err, &validationErr):
		slog.Info("returning error", "route", route, "status", http.StatusBadRequest, "error", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": validationErr.Details})
	case errors.Is(err, models.ErrCouponCodeTooShort), errors.Is(err, state.ErrEmptyCart):
		respondWithError(c, http.StatusBadRequest, route, err.Error())
	case errors.Is(err, state.ErrNotFound):
		respondWithError(c, http.StatusNotFound, route, "not found")
	case httpclient.IsNetwork(err):
		slog.Error("backend unreachable", "route", route, "err", err)
		respondWithError(c, http.StatusBadGateway, route, httpclient.Message(err))
	case httpclient.IsClientError(err):
		respondWithError(c, httpclient.StatusOf(err), route, httpclient.Message(err))
	case httpclient.IsServerError(err):
		slog.Error("backend error", "route", route, "err", err)
		respondWithError(c, http.StatusBadGateway, route, httpclient.Message(err))
	default:
		slog.Error("request failed", "route", route, "err", err)
		respondWithError(c, http.StatusInternalServerError, route, "internal server error")
	}
}

// bindJSON decodes the body into dst and answers 400 on malformed input.
func bindJSON(c *gin.Context, route string, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondWithError(c, http.StatusBadRequest, route, "invalid request body")
		return false
	}
	return true
}

// confirmed reports whether a destructive request carries ?confirm=true or an
// X-Confirm: true header.
func confirmed(c *gin.Context) bool {
	if value, ok := c.GetQuery("confirm"); ok {
		if parsed, err := parseBoolValue(value); err == nil && parsed {
			return true
		}
	}
	parsed, err := parseBoolValue(c.GetHeader("X-Confirm"))
	return err == nil && parsed
}

func requireConfirmation(c *gin.Context, route string) bool {
	if confirmed(c) {
		return true
	}
	respondWithError(c, http.StatusPreconditionRequired, route, "confirmation required")
	return false
}
