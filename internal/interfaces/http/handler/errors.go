package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "order_backend/internal/domain/order"
	"order_backend/pkg/logger"
)

func isBusinessError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidPrice) ||
		errors.Is(err, domain.ErrNoItems) ||
		errors.Is(err, domain.ErrMissingField)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case isBusinessError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides internal failures behind a generic message.
func writeError(c *gin.Context, log logger.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithContext(c.Request.Context()).Error("request failed",
			logger.String("path", c.FullPath()),
			logger.Error(err),
		)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
