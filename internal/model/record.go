package model

import (
	"time"

	"gorm.io/gorm"
)

// Record is the header shared by every persisted kind
type Record struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// SoftDeletedAt returns the soft-delete marker
func (r *Record) SoftDeletedAt() gorm.DeletedAt { return r.DeletedAt }
