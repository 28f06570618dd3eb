package model

import (
	"time"
)

// Card holds the payment details shown to users before they transfer money.
type Card struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	CardNumber string    `gorm:"size:30;not null" json:"card_number"`
	CardHolder string    `gorm:"size:100;not null" json:"card_holder"`
	IsActive   bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Card) TableName() string {
	return "cards"
}
