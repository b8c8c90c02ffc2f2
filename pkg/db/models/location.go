package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Location is one restaurant site. Stock is owned per location.
type Location struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Address   string    `gorm:"column:address;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
