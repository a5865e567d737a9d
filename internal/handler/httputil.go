package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"simkos/internal/domain"
	"simkos/prometheus"
)

// ownerID returns the authenticated owner id set by the auth
// middleware.
func ownerID(c echo.Context) (uint, bool) {
	id, ok := c.Get("user_id").(uint)
	return id, ok
}

// unauthorized is the response when the owner id is missing from the
// context, which means the route was wired without the auth middleware.
func unauthorized(c echo.Context, log *zap.Logger) error {
	log.Error("Failed to get user ID from context")
	prometheus.RecordError("unauthorized")
	return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
}

// respondError maps a domain error onto the wire: validation 400, not
// found 404, conflict 409, rate limited 429, anything else 500.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	switch {
	case domain.IsValidation(err):
		prometheus.RecordError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": err.Error()})
	case domain.IsNotFound(err):
		prometheus.RecordError("not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": err.Error()})
	case domain.IsConflict(err):
		prometheus.RecordError("conflict")
		return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": err.Error()})
	case domain.IsRateLimited(err):
		prometheus.RecordError("rate_limited")
		return c.JSON(http.StatusTooManyRequests, echo.Map{"success": false, "message": err.Error()})
	default:
		log.Error("request failed", zap.Error(err))
		prometheus.RecordError("storage")
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal server error"})
	}
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, domain.Validationf("invalid %s", name)
	}
	return uint(id), nil
}

// parseDate accepts "YYYY-MM-DD", tolerating a trailing time part the
// mobile client sometimes sends.
func parseDate(s string) (time.Time, error) {
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, domain.Validationf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
