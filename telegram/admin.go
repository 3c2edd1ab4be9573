package telegram

import (
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// isAdmin asks the gateway whether the user moderates the chat. Each check is
// a fresh round trip (no cache), so admin-status changes apply immediately.
// Any gateway error fails closed: ambiguous authority never grants rights.
func (b *Bot) isAdmin(chatID, userID int64) bool {
	member, err := b.gw.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		slog.Debug("chat member lookup failed", slog.Any("err", err), slog.Int64("chat_id", chatID), slog.Int64("user_id", userID))
		return false
	}
	return member.Status == "creator" || member.Status == "administrator"
}
