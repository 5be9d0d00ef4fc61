package models

import (
	"time"

	"gorm.io/gorm"
)

// Model mirrors gorm.Model with JSON names the API exposes.
type Model struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
