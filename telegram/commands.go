package telegram

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/onnwee/engage-tender/telemetry"
)

// fullyRestrictive mutes all non-admin activity; fullyPermissive restores the
// usual member rights.
var (
	fullyRestrictive = tgbotapi.ChatPermissions{}
	fullyPermissive  = tgbotapi.ChatPermissions{
		CanSendMessages:       true,
		CanSendMediaMessages:  true,
		CanSendPolls:          true,
		CanSendOtherMessages:  true,
		CanAddWebPagePreviews: true,
		CanInviteUsers:        true,
	}
)

// handleCommand runs one moderator command. Non-admin invocations are
// silently ignored: no reply, no error, so the command surface stays
// invisible to regular members.
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !b.isAdmin(chatID, msg.From.ID) {
		if b.store.Locked(chatID) {
			b.deleteMessage(chatID, msg.MessageID)
		}
		return
	}

	cmd := msg.Command()
	telemetry.CommandsHandled.WithLabelValues(cmd).Inc()
	log := telemetry.LoggerWithCorr(ctx).With(
		slog.String("command", cmd),
		slog.Int64("chat_id", chatID),
		slog.Int64("admin_id", msg.From.ID))

	switch cmd {
	case "send":
		discarded, roundID := b.store.Open(chatID)
		log.Info("round opened", slog.String("round_id", roundID), slog.Int("discarded", discarded))
		b.sendText(chatID, openReply(discarded))

	case "stop":
		discarded := b.store.Close(chatID, b.cfg.StopClears)
		log.Info("round closed", slog.Int("discarded", discarded))
		b.sendText(chatID, closeReply(discarded))

	case "refresh":
		discarded := b.store.Close(chatID, true)
		log.Info("round reset", slog.Int("discarded", discarded))
		b.sendText(chatID, refreshReply(discarded))

	case "lock":
		if err := b.setChatPermissions(chatID, fullyRestrictive); err != nil {
			// flag untouched: the store reflects only confirmed gateway state
			log.Error("lock failed", slog.Any("err", err))
			b.sendText(chatID, replyLockFail)
			return
		}
		b.store.SetLocked(chatID, true)
		log.Info("chat locked")
		b.sendText(chatID, replyLocked)

	case "unlock":
		if err := b.setChatPermissions(chatID, fullyPermissive); err != nil {
			log.Error("unlock failed", slog.Any("err", err))
			b.sendText(chatID, replyLockFail)
			return
		}
		b.store.SetLocked(chatID, false)
		log.Info("chat unlocked")
		b.sendText(chatID, replyUnlocked)

	case "detect":
		b.sendText(chatID, replyDetect)

	case "list":
		b.sendText(chatID, listReply(headerParticipants, b.store.Participants(chatID), emptyRoster))

	case "xlist":
		b.sendText(chatID, listReply(headerHandles, b.store.Handles(chatID), emptyHandles))

	case "adlist":
		b.sendText(chatID, listReply(headerCompleted, b.store.Completed(chatID), emptyCompleted))

	case "notad":
		b.sendText(chatID, listReply(headerNotCompleted, b.store.NotCompleted(chatID), allCompleted))

	case "rs":
		b.sendText(chatID, replyRules)
	}
}

// handlePrivateCommand answers /start and /help in direct chats. Everything
// else only makes sense inside a group.
func (b *Bot) handlePrivateCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.sendText(msg.Chat.ID, replyHelp)
	}
}
