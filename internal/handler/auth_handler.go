package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"simkos/internal/auth"
	"simkos/pkg/logger"
	"simkos/prometheus"
)

// AuthHandler exposes registration and the OTP login flow.
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register handles owner account creation.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordAuthOperation("register")

	var req struct {
		Email   string `json:"email"`
		NamaKos string `json:"nama_kos"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse register request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	userID, err := h.svc.Register(c.Request().Context(), req.Email, req.NamaKos)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"user_id": userID,
	})
}

// Login handles an OTP request for an existing account.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordAuthOperation("request_otp")

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	if err := h.svc.RequestOTP(c.Request().Context(), req.Email); err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "OTP sent",
	})
}

// Verify handles OTP verification and returns a session token.
func (h *AuthHandler) Verify(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordAuthOperation("verify")

	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse verify request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	token, err := h.svc.Verify(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"token":   token,
	})
}
