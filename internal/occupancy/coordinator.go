// Package occupancy keeps room status, tenant lifecycle and the income
// ledger mutually consistent. Every mutation runs inside one database
// transaction: a failed ledger write rolls back the status transition
// that triggered it.
//
// The tenant/room status coupling is fixed by a single transition table:
//
//	create(BOOKING)        -> tenant=BOOKING, room=BOOKING
//	create(LUNAS)          -> tenant=LUNAS,   room=ISI, +income
//	update(BOOKING->LUNAS) -> tenant=LUNAS,   room=ISI, +income
//	update(LUNAS->LUNAS)   -> tenant=LUNAS,   room=ISI  (no income)
//	checkout(any)          -> tenant deleted, room=KOSONG
//	extend(any)            -> checkout/jumlah replaced, +income always
//	delete room            -> only from KOSONG
package occupancy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"simkos/internal/domain"
	"simkos/internal/model"
	"simkos/prometheus"
)

// Coordinator orchestrates tenant lifecycle transitions and their room
// and ledger side effects.
type Coordinator struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

// NewCoordinator creates a coordinator on top of the given database.
func NewCoordinator(db *gorm.DB, log *zap.Logger) *Coordinator {
	return &Coordinator{
		db:  db,
		log: log,
		now: time.Now,
	}
}

// RoomInput carries the client-settable room fields. Status is never
// part of the input: new rooms start vacant and later transitions are
// derived from tenant state.
type RoomInput struct {
	NomorKamar    string
	HargaBulanan  int64
	HargaMingguan int64
	HargaHarian   int64
	Fasilitas     string
}

// TenantInput carries the client-settable tenant fields.
type TenantInput struct {
	RoomID           uint
	Nama             string
	NoHP             string
	Pekerjaan        string
	TanggalCheckin   time.Time
	TanggalCheckout  *time.Time
	MetodePembayaran string
	Jumlah           int64
	Status           model.TenantStatus
}

// ListRooms returns the owner's rooms with their current tenant, newest
// room first.
func (c *Coordinator) ListRooms(ctx context.Context, ownerID uint) ([]model.Room, error) {
	var rooms []model.Room
	err := c.db.WithContext(ctx).
		Preload("Tenant").
		Where("user_id = ?", ownerID).
		Order("id DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// CreateRoom inserts a new vacant room for the owner.
func (c *Coordinator) CreateRoom(ctx context.Context, ownerID uint, in RoomInput) (uint, error) {
	if in.NomorKamar == "" {
		return 0, domain.Validationf("nomor_kamar is required")
	}
	if in.HargaBulanan < 0 || in.HargaMingguan < 0 || in.HargaHarian < 0 {
		return 0, domain.Validationf("room prices must not be negative")
	}

	room := model.Room{
		UserID:        ownerID,
		NomorKamar:    in.NomorKamar,
		HargaBulanan:  in.HargaBulanan,
		HargaMingguan: in.HargaMingguan,
		HargaHarian:   in.HargaHarian,
		Fasilitas:     in.Fasilitas,
		Status:        model.RoomVacant,
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Room{}).
			Where("user_id = ? AND nomor_kamar = ?", ownerID, in.NomorKamar).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check room number: %w", err)
		}
		if count > 0 {
			return domain.Conflict("room number already in use")
		}
		if err := tx.Create(&room).Error; err != nil {
			return fmt.Errorf("create room: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	c.log.Info("room created",
		zap.Uint("room_id", room.ID),
		zap.Uint("owner_id", ownerID),
		zap.String("nomor_kamar", room.NomorKamar))
	return room.ID, nil
}

// UpdateRoom replaces the room's client-settable fields. The derived
// status is left untouched.
func (c *Coordinator) UpdateRoom(ctx context.Context, ownerID, roomID uint, in RoomInput) error {
	if in.NomorKamar == "" {
		return domain.Validationf("nomor_kamar is required")
	}
	if in.HargaBulanan < 0 || in.HargaMingguan < 0 || in.HargaHarian < 0 {
		return domain.Validationf("room prices must not be negative")
	}

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := loadRoom(tx, ownerID, roomID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Room{}).
			Where("user_id = ? AND nomor_kamar = ? AND id <> ?", ownerID, in.NomorKamar, roomID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check room number: %w", err)
		}
		if count > 0 {
			return domain.Conflict("room number already in use")
		}

		room.NomorKamar = in.NomorKamar
		room.HargaBulanan = in.HargaBulanan
		room.HargaMingguan = in.HargaMingguan
		room.HargaHarian = in.HargaHarian
		room.Fasilitas = in.Fasilitas
		if err := tx.Save(room).Error; err != nil {
			return fmt.Errorf("update room: %w", err)
		}
		return nil
	})
}

// DeleteRoom removes a room. Only vacant rooms may be deleted; a room
// with any tenant record, booked or paid, is rejected.
func (c *Coordinator) DeleteRoom(ctx context.Context, ownerID, roomID uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := loadRoom(tx, ownerID, roomID)
		if err != nil {
			return err
		}
		if room.Status != model.RoomVacant {
			return domain.Conflict("room is not vacant")
		}
		if err := tx.Delete(&model.Room{}, room.ID).Error; err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		return nil
	})
}

// CreateTenant inserts a tenant into a room and applies the derived
// room status. A tenant created already paid produces one income entry
// dated to the check-in date.
func (c *Coordinator) CreateTenant(ctx context.Context, ownerID uint, in TenantInput) (uint, error) {
	if in.RoomID == 0 || in.Nama == "" || in.TanggalCheckin.IsZero() {
		return 0, domain.Validationf("room_id, nama and tanggal_checkin are required")
	}
	status := in.Status
	if status == "" {
		status = model.TenantBooking
	}
	if status != model.TenantBooking && status != model.TenantPaid {
		return 0, domain.Validationf("status must be %s or %s", model.TenantBooking, model.TenantPaid)
	}
	if in.Jumlah < 0 {
		return 0, domain.Validationf("jumlah must not be negative")
	}

	tenant := model.Tenant{
		UserID:           ownerID,
		RoomID:           in.RoomID,
		Nama:             in.Nama,
		NoHP:             in.NoHP,
		Pekerjaan:        in.Pekerjaan,
		TanggalCheckin:   in.TanggalCheckin,
		TanggalCheckout:  in.TanggalCheckout,
		MetodePembayaran: in.MetodePembayaran,
		Jumlah:           in.Jumlah,
		Status:           status,
	}

	ledgered := false
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := loadRoom(tx, ownerID, in.RoomID)
		if err != nil {
			return err
		}

		// One active tenant per room.
		var occupied int64
		if err := tx.Model(&model.Tenant{}).
			Where("room_id = ?", room.ID).
			Count(&occupied).Error; err != nil {
			return fmt.Errorf("check room occupancy: %w", err)
		}
		if occupied > 0 {
			return domain.Conflict("room already has a tenant")
		}

		if err := tx.Create(&tenant).Error; err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}

		roomStatus := model.RoomBooked
		if tenant.Status == model.TenantPaid {
			roomStatus = model.RoomOccupied
		}
		if err := tx.Model(&model.Room{}).Where("id = ?", room.ID).
			Update("status", roomStatus).Error; err != nil {
			return fmt.Errorf("update room status: %w", err)
		}

		if tenant.Status == model.TenantPaid && tenant.Jumlah > 0 {
			if err := c.recordIncome(tx, ownerID, tenant.ID,
				"Sewa Awal - "+tenant.Nama, tenant.Jumlah, tenant.TanggalCheckin); err != nil {
				return err
			}
			ledgered = true
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if ledgered {
		prometheus.RecordLedgerEntry(string(model.EntryIncome))
	}

	c.log.Info("tenant created",
		zap.Uint("tenant_id", tenant.ID),
		zap.Uint("room_id", tenant.RoomID),
		zap.Uint("owner_id", ownerID),
		zap.String("status", string(tenant.Status)))
	return tenant.ID, nil
}

// UpdateTenant replaces the tenant's mutable fields. Crossing from
// BOOKING to LUNAS emits one settlement income entry; it never fires
// again on later LUNAS updates. A paid tenant keeps its room occupied.
func (c *Coordinator) UpdateTenant(ctx context.Context, ownerID, tenantID uint, in TenantInput) error {
	if in.Status != "" && in.Status != model.TenantBooking && in.Status != model.TenantPaid {
		return domain.Validationf("status must be %s or %s", model.TenantBooking, model.TenantPaid)
	}
	if in.Jumlah < 0 {
		return domain.Validationf("jumlah must not be negative")
	}

	ledgered := false
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := loadTenant(tx, ownerID, tenantID)
		if err != nil {
			return err
		}
		previous := tenant.Status

		tenant.Nama = in.Nama
		tenant.NoHP = in.NoHP
		tenant.Pekerjaan = in.Pekerjaan
		tenant.TanggalCheckin = in.TanggalCheckin
		tenant.TanggalCheckout = in.TanggalCheckout
		tenant.MetodePembayaran = in.MetodePembayaran
		tenant.Jumlah = in.Jumlah
		if in.Status != "" {
			tenant.Status = in.Status
		}
		if err := tx.Save(tenant).Error; err != nil {
			return fmt.Errorf("update tenant: %w", err)
		}

		if previous == model.TenantBooking && tenant.Status == model.TenantPaid {
			if err := c.recordIncome(tx, ownerID, tenant.ID,
				"Pelunasan - "+tenant.Nama, tenant.Jumlah, tenant.TanggalCheckin); err != nil {
				return err
			}
			ledgered = true
		}

		if tenant.Status == model.TenantPaid {
			if err := tx.Model(&model.Room{}).Where("id = ?", tenant.RoomID).
				Update("status", model.RoomOccupied).Error; err != nil {
				return fmt.Errorf("update room status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if ledgered {
		prometheus.RecordLedgerEntry(string(model.EntryIncome))
	}
	return nil
}

// Checkout ends the stay: the tenant row is removed and the room goes
// back to vacant. Historic ledger entries for the tenant are kept.
func (c *Coordinator) Checkout(ctx context.Context, ownerID, tenantID uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := loadTenant(tx, ownerID, tenantID)
		if err != nil {
			return err
		}
		if err := tx.Model(&model.Room{}).Where("id = ?", tenant.RoomID).
			Update("status", model.RoomVacant).Error; err != nil {
			return fmt.Errorf("update room status: %w", err)
		}
		if err := tx.Delete(&model.Tenant{}, tenant.ID).Error; err != nil {
			return fmt.Errorf("delete tenant: %w", err)
		}
		c.log.Info("tenant checked out",
			zap.Uint("tenant_id", tenant.ID),
			zap.Uint("room_id", tenant.RoomID),
			zap.Uint("owner_id", ownerID))
		return nil
	})
}

// ExtendStay replaces the tenant's check-out date and jumlah with the
// supplied values and records the additional payment as income dated
// now. The replacement is deliberate: jumlah is the last payment
// amount, the ledger holds the running total.
func (c *Coordinator) ExtendStay(ctx context.Context, ownerID, tenantID uint, newCheckout time.Time, additional int64) error {
	if newCheckout.IsZero() || additional <= 0 {
		return domain.Validationf("tanggal_checkout_baru and a positive nominal_tambahan are required")
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := loadTenant(tx, ownerID, tenantID)
		if err != nil {
			return err
		}
		tenant.TanggalCheckout = &newCheckout
		tenant.Jumlah = additional
		if err := tx.Save(tenant).Error; err != nil {
			return fmt.Errorf("extend tenant: %w", err)
		}
		return c.recordIncome(tx, ownerID, tenant.ID,
			"Perpanjangan - "+tenant.Nama, additional, c.now())
	})
	if err != nil {
		return err
	}
	prometheus.RecordLedgerEntry(string(model.EntryIncome))
	return nil
}

func (c *Coordinator) recordIncome(tx *gorm.DB, ownerID, tenantID uint, judul string, jumlah int64, tanggal time.Time) error {
	entry := model.LedgerEntry{
		UserID:   ownerID,
		TenantID: &tenantID,
		Judul:    judul,
		Jumlah:   jumlah,
		Tanggal:  tanggal,
		Kind:     model.EntryIncome,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("record income: %w", err)
	}
	return nil
}

func loadRoom(tx *gorm.DB, ownerID, roomID uint) (*model.Room, error) {
	var room model.Room
	err := tx.Where("id = ? AND user_id = ?", roomID, ownerID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("room")
	}
	if err != nil {
		return nil, fmt.Errorf("load room: %w", err)
	}
	return &room, nil
}

func loadTenant(tx *gorm.DB, ownerID, tenantID uint) (*model.Tenant, error) {
	var tenant model.Tenant
	err := tx.Where("id = ? AND user_id = ?", tenantID, ownerID).First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("tenant")
	}
	if err != nil {
		return nil, fmt.Errorf("load tenant: %w", err)
	}
	return &tenant, nil
}
