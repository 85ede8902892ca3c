package api

import (
	"errors"
	"net/http"

	"github.com/avoronov/fitbook/internal/domain"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInstanceNotFound), errors.Is(err, domain.ErrNoActiveBooking):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyBooked), errors.Is(err, domain.ErrClassFull), errors.Is(err, domain.ErrGenerationConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInstanceInPast), errors.Is(err, domain.ErrCancellationWindowPassed), errors.Is(err, domain.ErrCheckInWindowClosed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrTemplateInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
