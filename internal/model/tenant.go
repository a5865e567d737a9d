package model

import (
	"time"
)

// TenantStatus is the booking lifecycle state of a tenant.
type TenantStatus string

const (
	TenantBooking TenantStatus = "BOOKING"
	TenantPaid    TenantStatus = "LUNAS"
)

// Tenant represents the current occupant (or booker) of one room.
// Jumlah records the latest payment amount, not a running total; the
// ledger carries the accumulated history.
type Tenant struct {
	ID               uint         `json:"id" gorm:"primaryKey"`
	UserID           uint         `json:"-" gorm:"index;not null"`
	RoomID           uint         `json:"room_id" gorm:"index;not null"`
	Nama             string       `json:"nama" gorm:"type:varchar(100);not null"`
	NoHP             string       `json:"no_hp" gorm:"type:varchar(30)"`
	Pekerjaan        string       `json:"pekerjaan" gorm:"type:varchar(100)"`
	TanggalCheckin   time.Time    `json:"tanggal_checkin"`
	TanggalCheckout  *time.Time   `json:"tanggal_checkout"`
	MetodePembayaran string       `json:"metode_pembayaran" gorm:"type:varchar(30)"`
	Jumlah           int64        `json:"jumlah" gorm:"default:0"`
	Status           TenantStatus `json:"status" gorm:"type:varchar(20);default:BOOKING"`
	CreatedAt        time.Time    `json:"-"`
	UpdatedAt        time.Time    `json:"-"`
}
