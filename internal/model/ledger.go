package model

import (
	"time"
)

// EntryKind distinguishes income from expense rows.
type EntryKind string

const (
	EntryIncome  EntryKind = "INCOME"
	EntryExpense EntryKind = "EXPENSE"
)

// LedgerEntry is an append-only financial record. Income entries are
// emitted by tenant lifecycle transitions and keep a reference to the
// tenant that produced them; expense entries stand alone. Entries are
// never updated or deleted except by the account erasure cascade.
type LedgerEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"index;not null"`
	TenantID  *uint     `json:"tenant_id,omitempty" gorm:"index"`
	Judul     string    `json:"judul" gorm:"type:varchar(150);not null"`
	Kategori  string    `json:"kategori,omitempty" gorm:"type:varchar(50)"`
	Jumlah    int64     `json:"jumlah" gorm:"not null"`
	Tanggal   time.Time `json:"tanggal"`
	Kind      EntryKind `json:"kind" gorm:"type:varchar(10);index;not null"`
	CreatedAt time.Time `json:"created_at"`
}
