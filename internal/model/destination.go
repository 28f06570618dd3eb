package model

import (
	"time"
)

// Destination is a protected group or channel the bot administers.
// Rows are soft-deleted via is_active so old invite records keep resolving.
type Destination struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ChatID    int64     `gorm:"not null;index" json:"chat_id"`
	Title     string    `gorm:"size:200" json:"title"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (Destination) TableName() string {
	return "destinations"
}
