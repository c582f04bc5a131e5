package telegram

import (
	"context"
	"sync"
)

type sentMessage struct {
	chatID   int64
	text     string
	keyboard *InlineKeyboardMarkup
}

type sentAnswer struct {
	callbackID string
	text       string
	alert      bool
}

// fakeAPI records every call and fails on demand.
type fakeAPI struct {
	mu       sync.Mutex
	sent     []sentMessage
	edits    []sentMessage
	answers  []sentAnswer
	approved []int64
	banned   []int64
	unbanned []int64

	sendErr    error
	approveErr error
	banErr     error
	unbanErr   error
}

func (f *fakeAPI) SendMessage(_ context.Context, chatID int64, text string, keyboard *InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	return nil
}

func (f *fakeAPI) EditMessageText(_ context.Context, chatID, messageID int64, text string, keyboard *InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	return nil
}

func (f *fakeAPI) AnswerCallbackQuery(_ context.Context, callbackID, text string, showAlert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, sentAnswer{callbackID: callbackID, text: text, alert: showAlert})
	return nil
}

func (f *fakeAPI) ApproveChatJoinRequest(_ context.Context, _, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.approveErr != nil {
		return f.approveErr
	}
	f.approved = append(f.approved, userID)
	return nil
}

func (f *fakeAPI) BanChatMember(_ context.Context, _, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.banErr != nil {
		return f.banErr
	}
	f.banned = append(f.banned, userID)
	return nil
}

func (f *fakeAPI) UnbanChatMember(_ context.Context, _, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unbanErr != nil {
		return f.unbanErr
	}
	f.unbanned = append(f.unbanned, userID)
	return nil
}

func (f *fakeAPI) lastSent() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}
