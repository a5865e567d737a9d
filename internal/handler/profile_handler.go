package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"simkos/internal/account"
	"simkos/pkg/logger"
	"simkos/prometheus"
)

// ProfileHandler exposes the owner profile and account lifecycle.
type ProfileHandler struct {
	svc *account.Service
}

// NewProfileHandler creates the profile handler.
func NewProfileHandler(svc *account.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Profile returns the owner's email and kos name.
func (h *ProfileHandler) Profile(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordAuthOperation("profile_access")

	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := h.svc.Profile(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"email":    user.Email,
			"nama_kos": user.NamaKos,
		},
	})
}

// UpdateNamaKos renames the boarding house.
func (h *ProfileHandler) UpdateNamaKos(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordAuthOperation("profile_update")

	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}

	var req struct {
		NamaKos string `json:"nama_kos"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse profile request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.svc.UpdateNamaKos(c.Request().Context(), uid, req.NamaKos); err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// RequestEmailChange starts an email change with an OTP to the new
// address.
func (h *ProfileHandler) RequestEmailChange(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordAuthOperation("email_change_request")

	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse email change request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	if err := h.svc.RequestEmailChange(c.Request().Context(), uid, req.Email); err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// VerifyEmailChange confirms the OTP and applies the pending address.
func (h *ProfileHandler) VerifyEmailChange(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordAuthOperation("email_change_verify")

	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}

	var req struct {
		OTP string `json:"otp"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse email verify request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	if err := h.svc.VerifyEmailChange(c.Request().Context(), uid, req.OTP); err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ClearData removes all rooms, tenants and ledger entries, keeping the
// account.
func (h *ProfileHandler) ClearData(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordAuthOperation("clear_data")

	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.svc.ClearData(c.Request().Context(), uid); err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "all data reset",
	})
}

// DeleteAccount removes the account and everything it owns.
func (h *ProfileHandler) DeleteAccount(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordAuthOperation("delete_account")

	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.svc.DeleteAccount(c.Request().Context(), uid); err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "account permanently deleted",
	})
}
