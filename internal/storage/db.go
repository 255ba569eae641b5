package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&Slot{}, &Booking{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Get(ctx context.Context, key string) ([]byte, error) {
	var slot Slot
	err := d.db.WithContext(ctx).Where("name = ?", key).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	return slot.Value, nil
}

func (d *Database) Put(ctx context.Context, key string, value []byte) error {
	slot := Slot{Name: key, Value: value}
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
	if err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	return nil
}

func (d *Database) Remove(ctx context.Context, key string) error {
	if err := d.db.WithContext(ctx).Where("name = ?", key).Delete(&Slot{}).Error; err != nil {
		return fmt.Errorf("failed to remove slot %q: %w", key, err)
	}
	return nil
}

func (d *Database) SaveBooking(ctx context.Context, b *Booking) error {
	if err := d.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

func (d *Database) GetBookings(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	if err := d.db.WithContext(ctx).Order("created_at asc").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	return bookings, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
