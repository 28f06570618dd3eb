package model

import (
	"time"
)

type Subscription struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
	PaymentID   int64     `gorm:"not null;uniqueIndex" json:"payment_id"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null;index" json:"end_date"`
	IsActive    bool      `gorm:"not null;default:true;index" json:"is_active"`
	WarningSent bool      `gorm:"not null;default:false" json:"warning_sent"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// DaysLeft returns whole days until end_date, never negative.
func (s *Subscription) DaysLeft(now time.Time) int {
	d := int(s.EndDate.Sub(now).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
