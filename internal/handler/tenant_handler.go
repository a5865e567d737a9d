package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"simkos/internal/model"
	"simkos/internal/occupancy"
	"simkos/pkg/logger"
	"simkos/prometheus"
)

// TenantHandler exposes the tenant lifecycle on top of the occupancy
// coordinator.
type TenantHandler struct {
	coord *occupancy.Coordinator
}

// NewTenantHandler creates the tenant handler.
func NewTenantHandler(coord *occupancy.Coordinator) *TenantHandler {
	return &TenantHandler{coord: coord}
}

type tenantRequest struct {
	RoomID           uint    `json:"room_id"`
	Nama             string  `json:"nama"`
	NoHP             string  `json:"no_hp"`
	Pekerjaan        string  `json:"pekerjaan"`
	TanggalCheckin   string  `json:"tanggal_checkin"`
	TanggalCheckout  *string `json:"tanggal_checkout"`
	MetodePembayaran string  `json:"metode_pembayaran"`
	Jumlah           int64   `json:"jumlah"`
	Status           string  `json:"status"`
}

func (r *tenantRequest) toInput() (occupancy.TenantInput, error) {
	in := occupancy.TenantInput{
		RoomID:           r.RoomID,
		Nama:             r.Nama,
		NoHP:             r.NoHP,
		Pekerjaan:        r.Pekerjaan,
		MetodePembayaran: r.MetodePembayaran,
		Jumlah:           r.Jumlah,
		Status:           model.TenantStatus(r.Status),
	}
	if r.TanggalCheckin != "" {
		checkin, err := parseDate(r.TanggalCheckin)
		if err != nil {
			return in, err
		}
		in.TanggalCheckin = checkin
	}
	if r.TanggalCheckout != nil && *r.TanggalCheckout != "" {
		checkout, err := parseDate(*r.TanggalCheckout)
		if err != nil {
			return in, err
		}
		in.TanggalCheckout = &checkout
	}
	return in, nil
}

// Create adds a tenant to a room and applies the room/ledger effects.
func (h *TenantHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordOccupancyOperation("create_tenant")

	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}

	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}
	in, err := req.toInput()
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	tenantID, err := h.coord.CreateTenant(c.Request().Context(), uid, in)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":   true,
		"tenant_id": tenantID,
		"message":   "tenant added",
	})
}

// Update replaces the tenant's fields and applies the conditional
// settlement ledger entry.
func (h *TenantHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordOccupancyOperation("update_tenant")

	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}
	tenantID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}
	in, err := req.toInput()
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.coord.UpdateTenant(c.Request().Context(), uid, tenantID, in); err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "tenant updated",
	})
}

// Checkout removes the tenant and frees the room.
func (h *TenantHandler) Checkout(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordOccupancyOperation("checkout")

	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}
	tenantID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.coord.Checkout(c.Request().Context(), uid, tenantID); err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "checkout complete",
	})
}

// Extend replaces the check-out date and jumlah, and records the
// payment.
func (h *TenantHandler) Extend(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordOccupancyOperation("extend")

	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}
	tenantID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	var req struct {
		TanggalCheckoutBaru string `json:"tanggal_checkout_baru"`
		NominalTambahan     int64  `json:"nominal_tambahan"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse extend request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}
	var newCheckout time.Time
	if req.TanggalCheckoutBaru != "" {
		newCheckout, err = parseDate(req.TanggalCheckoutBaru)
		if err != nil {
			return respondError(c, log, err)
		}
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.coord.ExtendStay(c.Request().Context(), uid, tenantID, newCheckout, req.NominalTambahan); err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "stay extended",
	})
}
