// Package testutil provides test doubles shared across packages.
package testutil

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FakeGateway is a recording stand-in for *tgbotapi.BotAPI. It satisfies the
// telegram.Gateway interface structurally, so this package needs no import of
// the telegram package.
type FakeGateway struct {
	mu sync.Mutex

	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable

	// Admins maps "chatID:userID" to true for members reported as admins.
	Admins map[string]bool

	// Error injection
	SendErr         error
	RequestErr      error
	MemberErr       error
	SendFailures    int   // fail this many Send calls before succeeding
	SendFailErr     error // error for failed Send calls, default 500
	RequestFailures int   // fail this many Request calls before succeeding

	// Attempt counters, incremented on every call regardless of outcome.
	SendCalls    int
	RequestCalls int
}

// NewFakeGateway returns an empty gateway with no admins configured.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{Admins: make(map[string]bool)}
}

func memberKey(chatID, userID int64) string { return fmt.Sprintf("%d:%d", chatID, userID) }

// GrantAdmin marks the user as an administrator of the chat.
func (g *FakeGateway) GrantAdmin(chatID, userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Admins[memberKey(chatID, userID)] = true
}

func (g *FakeGateway) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.SendCalls++
	if g.SendFailures > 0 {
		g.SendFailures--
		if g.SendFailErr != nil {
			return tgbotapi.Message{}, g.SendFailErr
		}
		return tgbotapi.Message{}, &tgbotapi.Error{Code: 500, Message: "internal"}
	}
	if g.SendErr != nil {
		return tgbotapi.Message{}, g.SendErr
	}
	g.sent = append(g.sent, c)
	return tgbotapi.Message{MessageID: len(g.sent)}, nil
}

func (g *FakeGateway) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.RequestCalls++
	if g.RequestFailures > 0 {
		g.RequestFailures--
		return nil, &tgbotapi.Error{Code: 500, Message: "internal"}
	}
	if g.RequestErr != nil {
		return nil, g.RequestErr
	}
	g.requests = append(g.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (g *FakeGateway) GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.MemberErr != nil {
		return tgbotapi.ChatMember{}, g.MemberErr
	}
	status := "member"
	if g.Admins[memberKey(cfg.ChatID, cfg.UserID)] {
		status = "administrator"
	}
	return tgbotapi.ChatMember{Status: status}, nil
}

// SentTexts returns the text of every message sent, in order.
func (g *FakeGateway) SentTexts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, c := range g.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

// LastText returns the most recently sent message text, or "".
func (g *FakeGateway) LastText() string {
	texts := g.SentTexts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// DeletedMessageIDs returns the IDs of all messages deleted via Request.
func (g *FakeGateway) DeletedMessageIDs() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []int
	for _, c := range g.requests {
		if d, ok := c.(tgbotapi.DeleteMessageConfig); ok {
			out = append(out, d.MessageID)
		}
	}
	return out
}

// PermissionChanges returns every setChatPermissions payload, in order.
func (g *FakeGateway) PermissionChanges() []tgbotapi.ChatPermissions {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []tgbotapi.ChatPermissions
	for _, c := range g.requests {
		if p, ok := c.(tgbotapi.SetChatPermissionsConfig); ok && p.Permissions != nil {
			out = append(out, *p.Permissions)
		}
	}
	return out
}
