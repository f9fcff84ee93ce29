package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hoteldesk-backend/apperrors"
	"hoteldesk-backend/middleware"
	"hoteldesk-backend/utils"
)

// respondError maps domain errors onto HTTP statuses with the uniform
// {"error": ...} body. Unexpected failures are logged with full detail and
// surfaced as a generic 500.
func respondError(c *gin.Context, log *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrNoAvailability),
		errors.Is(err, apperrors.ErrInsufficientBalance),
		errors.Is(err, apperrors.ErrInsufficientStock),
		errors.Is(err, apperrors.ErrMaximumStockExceeded),
		errors.Is(err, apperrors.ErrInactiveItem):
		utils.JSONError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrUnauthorized):
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, apperrors.ErrMultipleMainAccounts):
		log.Errorw("main account invariant broken", "path", c.FullPath(), "error", err)
		utils.JSONError(c, http.StatusInternalServerError, "internal server error")
	default:
		log.Errorw("request failed", "path", c.FullPath(), "error", err)
		utils.JSONError(c, http.StatusInternalServerError, "internal server error")
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// parseDate accepts YYYY-MM-DD or RFC3339.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// sessionUserName returns the display name of the authenticated user.
func sessionUserName(c *gin.Context) string {
	if v, ok := c.Get(middleware.ContextUserName); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// sessionUserID returns the authenticated user's id, or zero.
func sessionUserID(c *gin.Context) uint {
	if v, ok := c.Get(middleware.ContextUserID); ok {
		if s, ok := v.(string); ok {
			if id, err := strconv.ParseUint(s, 10, 64); err == nil {
				return uint(id)
			}
		}
	}
	return 0
}
