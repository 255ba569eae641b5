package storage

import (
	"time"

	"gorm.io/gorm"
)

// Slot is a single named value in the key/value table backing the ledger.
type Slot struct {
	Name      string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

// Booking is a processed event booking kept for the owner's records.
type Booking struct {
	gorm.Model
	Reference     string `gorm:"uniqueIndex"`
	Name          string
	Email         string
	EventType     string
	EventDate     string
	Guests        int
	Budget        float64
	PaymentMethod string
	PaymentID     string
	Message       string
}
