package model

import (
	"time"
)

// Payment statuses. A payment starts pending and is decided exactly once.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

type Payment struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	UserID        int64      `gorm:"not null;index" json:"user_id"`
	User          User       `gorm:"foreignKey:UserID" json:"-"`
	Amount        int64      `gorm:"not null" json:"amount"`
	ReceiptFileID string     `gorm:"size:200;not null" json:"receipt_file_id"`
	Status        string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	DecidedBy     *int64     `json:"decided_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// Decided reports whether the payment has left the pending state.
func (p *Payment) Decided() bool {
	return p.Status != PaymentStatusPending
}
