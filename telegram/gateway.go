// Package telegram adapts the Telegram Bot API into the bot's message
// classifier and moderator command handlers. It owns nothing stateful itself;
// all round state lives in the session store, and every outbound call is
// best-effort with bounded retries.
package telegram

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/onnwee/engage-tender/telemetry"
)

// Gateway is the subset of *tgbotapi.BotAPI the handlers use. Tests substitute
// a recording fake.
type Gateway interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

const maxSendAttempts = 3

// retryBackoffBase scales the exponential backoff between outbound attempts.
var retryBackoffBase = time.Second

// retryDelay maps an outbound error to a wait before the next attempt, or
// (0, false) when the error is not worth retrying.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		if tgErr.RetryAfter > 0 {
			return time.Duration(tgErr.RetryAfter) * time.Second, true
		}
		// 4xx responses other than rate limiting won't heal on retry
		if tgErr.Code >= 400 && tgErr.Code < 500 && tgErr.Code != 429 {
			return 0, false
		}
	}
	return time.Duration(1<<attempt) * retryBackoffBase, true
}

// sendText delivers a plain text message with bounded retry. Final failure is
// logged and counted, never propagated: replies are cosmetic, the store is
// the source of truth.
func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	var err error
	for attempt := 0; attempt < maxSendAttempts; attempt++ {
		if _, err = b.gw.Send(msg); err == nil {
			return
		}
		d, retryable := retryDelay(err, attempt)
		if !retryable {
			break
		}
		time.Sleep(d)
	}
	telemetry.SendFailures.Inc()
	slog.Error("send failed", slog.Any("err", err), slog.Int64("chat_id", chatID))
}

// deleteMessage removes a message with bounded retry. "Message to delete not
// found" and similar already-gone responses are benign no-ops.
func (b *Bot) deleteMessage(chatID int64, messageID int) {
	cfg := tgbotapi.NewDeleteMessage(chatID, messageID)
	var err error
	for attempt := 0; attempt < maxSendAttempts; attempt++ {
		if _, err = b.gw.Request(cfg); err == nil {
			return
		}
		var tgErr *tgbotapi.Error
		if errors.As(err, &tgErr) && tgErr.Code == 400 {
			// already gone or never deletable
			slog.Debug("delete skipped", slog.Any("err", err), slog.Int("message_id", messageID))
			return
		}
		d, retryable := retryDelay(err, attempt)
		if !retryable {
			break
		}
		time.Sleep(d)
	}
	telemetry.DeleteFailures.Inc()
	slog.Warn("delete failed", slog.Any("err", err), slog.Int64("chat_id", chatID), slog.Int("message_id", messageID))
}

// setChatPermissions applies a permission set at the gateway level. Unlike
// sends, the caller needs the outcome: the locked flag must reflect only
// confirmed gateway state.
func (b *Bot) setChatPermissions(chatID int64, perms tgbotapi.ChatPermissions) error {
	cfg := tgbotapi.SetChatPermissionsConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: chatID},
		Permissions: &perms,
	}
	var err error
	for attempt := 0; attempt < maxSendAttempts; attempt++ {
		if _, err = b.gw.Request(cfg); err == nil {
			return nil
		}
		d, retryable := retryDelay(err, attempt)
		if !retryable {
			break
		}
		time.Sleep(d)
	}
	return err
}

// displayName renders the sender for roster output: @username when set,
// otherwise the first name.
func displayName(u *tgbotapi.User) string {
	if u == nil {
		return "Unknown"
	}
	if u.UserName != "" {
		return "@" + u.UserName
	}
	if s := strings.TrimSpace(u.FirstName); s != "" {
		return s
	}
	return "Unknown"
}
