package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"simkos/internal/finance"
	"simkos/pkg/logger"
	"simkos/prometheus"
)

// FinanceHandler exposes the financial summary and expense recording.
type FinanceHandler struct {
	agg *finance.Aggregator
}

// NewFinanceHandler creates the finance handler.
func NewFinanceHandler(agg *finance.Aggregator) *FinanceHandler {
	return &FinanceHandler{agg: agg}
}

// Summary returns totals, the current month's income and the recent
// transaction history.
func (h *FinanceHandler) Summary(c echo.Context) error {
	log := logger.FromEcho(c)

	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	summary, err := h.agg.Summarize(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    summary,
	})
}

// Expense records an expense entry dated today.
func (h *FinanceHandler) Expense(c echo.Context) error {
	log := logger.FromEcho(c)

	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}

	var req struct {
		Nama   string `json:"nama"`
		Jenis  string `json:"jenis"`
		Jumlah int64  `json:"jumlah"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse expense request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	entryID, err := h.agg.RecordExpense(c.Request().Context(), uid, req.Nama, req.Jenis, req.Jumlah)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":  true,
		"entry_id": entryID,
		"message":  "expense recorded",
	})
}
