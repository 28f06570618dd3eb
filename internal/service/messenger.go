package service

import (
	"context"
)

// Messenger is the outbound messaging collaborator. All calls are
// best-effort from the caller's point of view: a delivery failure never
// rolls back the state transition that triggered it.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMessageWithMarkup(ctx context.Context, chatID int64, text string, markup interface{}) error
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, markup interface{}) error
	CreateInviteLink(ctx context.Context, chatID int64, name string) (string, error)
	BanThenUnban(ctx context.Context, chatID, userID int64) error
}
