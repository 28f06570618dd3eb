package dto

import "time"

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type DecidePaymentRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=approve reject"`
}

type PaymentItem struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	FullName  string     `json:"full_name"`
	Phone     string     `json:"phone"`
	Amount    int64      `json:"amount"`
	Status    string     `json:"status"`
	DecidedBy *int64     `json:"decided_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

type StatsResponse struct {
	Users            int64 `json:"users"`
	PaymentsPending  int64 `json:"payments_pending"`
	PaymentsApproved int64 `json:"payments_approved"`
	PaymentsRejected int64 `json:"payments_rejected"`
	ActiveGrants     int64 `json:"active_grants"`
	Destinations     int64 `json:"destinations"`
}

type CreateDestinationRequest struct {
	ChatID int64  `json:"chat_id" binding:"required"`
	Title  string `json:"title"`
}

type CreateCardRequest struct {
	CardNumber string `json:"card_number" binding:"required"`
	CardHolder string `json:"card_holder" binding:"required"`
}
