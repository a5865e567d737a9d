package model

import (
	"time"
)

// User represents a kos owner account. Login is passwordless: a short
// lived OTP is written to the row and cleared once verified. A pending
// email change keeps the new address in PendingEmail until its own OTP
// is confirmed.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	NamaKos      string     `json:"nama_kos" gorm:"type:varchar(100)"`
	OTP          *string    `json:"-" gorm:"type:varchar(6)"`
	OTPExpires   *time.Time `json:"-"`
	PendingEmail *string    `json:"-" gorm:"type:varchar(100)"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
