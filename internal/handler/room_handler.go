package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"simkos/internal/occupancy"
	"simkos/pkg/logger"
	"simkos/prometheus"
)

// RoomHandler exposes room CRUD on top of the occupancy coordinator.
type RoomHandler struct {
	coord *occupancy.Coordinator
}

// NewRoomHandler creates the room handler.
func NewRoomHandler(coord *occupancy.Coordinator) *RoomHandler {
	return &RoomHandler{coord: coord}
}

type roomRequest struct {
	NomorKamar    string `json:"nomor_kamar"`
	HargaBulanan  int64  `json:"harga_bulanan"`
	HargaMingguan int64  `json:"harga_mingguan"`
	HargaHarian   int64  `json:"harga_harian"`
	Fasilitas     string `json:"fasilitas"`
}

func (r *roomRequest) toInput() occupancy.RoomInput {
	return occupancy.RoomInput{
		NomorKamar:    r.NomorKamar,
		HargaBulanan:  r.HargaBulanan,
		HargaMingguan: r.HargaMingguan,
		HargaHarian:   r.HargaHarian,
		Fasilitas:     r.Fasilitas,
	}
}

// List returns the owner's rooms with their current tenant embedded.
func (h *RoomHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	rooms, err := h.coord.ListRooms(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    rooms,
	})
}

// Create adds a vacant room.
func (h *RoomHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordOccupancyOperation("create_room")

	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}

	var req roomRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse room request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	roomID, err := h.coord.CreateRoom(c.Request().Context(), uid, req.toInput())
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"room_id": roomID,
	})
}

// Update replaces the room's fields.
func (h *RoomHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordOccupancyOperation("update_room")

	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}
	roomID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	var req roomRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse room request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.coord.UpdateRoom(c.Request().Context(), uid, roomID, req.toInput()); err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "room updated",
	})
}

// Delete removes a vacant room.
func (h *RoomHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordOccupancyOperation("delete_room")

	uid, ok := ownerID(c)
	if !ok {
		return unauthorized(c, log)
	}
	roomID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.coord.DeleteRoom(c.Request().Context(), uid, roomID); err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
