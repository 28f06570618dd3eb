package service

import (
	"context"
	"fmt"
	"sync"
)

// fakeMessenger records outbound calls and can be told to fail.
type fakeMessenger struct {
	mu sync.Mutex

	messages    []sentMessage
	photos      []sentPhoto
	inviteLinks []int64
	banned      []bannedPair

	failSend    bool
	failInvites bool
	failBans    map[int64]bool // chatID -> fail
}

type sentMessage struct {
	ChatID int64
	Text   string
	Markup interface{}
}

type sentPhoto struct {
	ChatID  int64
	FileID  string
	Caption string
}

type bannedPair struct {
	ChatID int64
	UserID int64
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{failBans: make(map[int64]bool)}
}

func (f *fakeMessenger) SendMessage(ctx context.Context, chatID int64, text string) error {
	return f.SendMessageWithMarkup(ctx, chatID, text, nil)
}

func (f *fakeMessenger) SendMessageWithMarkup(ctx context.Context, chatID int64, text string, markup interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return fmt.Errorf("delivery failed")
	}
	f.messages = append(f.messages, sentMessage{ChatID: chatID, Text: text, Markup: markup})
	return nil
}

func (f *fakeMessenger) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, markup interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return fmt.Errorf("delivery failed")
	}
	f.photos = append(f.photos, sentPhoto{ChatID: chatID, FileID: fileID, Caption: caption})
	return nil
}

func (f *fakeMessenger) CreateInviteLink(ctx context.Context, chatID int64, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInvites {
		return "", fmt.Errorf("invite link failed")
	}
	f.inviteLinks = append(f.inviteLinks, chatID)
	return fmt.Sprintf("https://t.me/+invite%d", chatID), nil
}

func (f *fakeMessenger) BanThenUnban(ctx context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failBans[chatID] {
		return fmt.Errorf("ban failed")
	}
	f.banned = append(f.banned, bannedPair{ChatID: chatID, UserID: userID})
	return nil
}

func (f *fakeMessenger) messagesTo(chatID int64) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}
