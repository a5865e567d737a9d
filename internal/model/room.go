package model

import (
	"time"
)

// RoomStatus is derived from the room's tenant state; clients never set
// it directly except that new rooms start out vacant.
type RoomStatus string

const (
	RoomVacant   RoomStatus = "KOSONG"
	RoomBooked   RoomStatus = "BOOKING"
	RoomOccupied RoomStatus = "ISI"
)

// Room represents a rentable room owned by a single account. Prices are
// stored in rupiah with no minor unit.
type Room struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	UserID        uint       `json:"-" gorm:"not null;uniqueIndex:idx_rooms_owner_nomor"`
	NomorKamar    string     `json:"nomor_kamar" gorm:"type:varchar(50);not null;uniqueIndex:idx_rooms_owner_nomor"`
	HargaBulanan  int64      `json:"harga_bulanan" gorm:"default:0"`
	HargaMingguan int64      `json:"harga_mingguan" gorm:"default:0"`
	HargaHarian   int64      `json:"harga_harian" gorm:"default:0"`
	Fasilitas     string     `json:"fasilitas" gorm:"type:text"`
	Status        RoomStatus `json:"status" gorm:"type:varchar(20);default:KOSONG"`
	Tenant        *Tenant    `json:"tenant" gorm:"foreignKey:RoomID"`
	CreatedAt     time.Time  `json:"-"`
	UpdatedAt     time.Time  `json:"-"`
}
