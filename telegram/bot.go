package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/onnwee/engage-tender/archive"
	"github.com/onnwee/engage-tender/config"
	"github.com/onnwee/engage-tender/links"
	"github.com/onnwee/engage-tender/session"
	"github.com/onnwee/engage-tender/telemetry"
)

// Bot wires the gateway, the session store, and the link extractor together.
type Bot struct {
	gw    Gateway
	store *session.Store
	ext   *links.Extractor
	arc   *archive.Archive
	cfg   *config.Config
}

// New builds a Bot. arc may be nil (archive disabled).
func New(gw Gateway, store *session.Store, ext *links.Extractor, arc *archive.Archive, cfg *config.Config) *Bot {
	return &Bot{gw: gw, store: store, ext: ext, arc: arc, cfg: cfg}
}

// confirmationKeywords are the engagement-confirmation messages, compared
// against trimmed lower-cased text.
var confirmationKeywords = map[string]bool{
	"ad":        true,
	"done":      true,
	"all done":  true,
	"completed": true,
}

// HandleUpdate processes one gateway update. It never panics outward and
// never returns an error: one failing update must not take down the stream.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.UpdateFailures.Inc()
			slog.Error("update handler panicked", slog.Any("panic", r), slog.Int("update_id", upd.UpdateID))
		}
	}()
	telemetry.UpdatesProcessed.Inc()

	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	ctx, span := telemetry.StartSpan(ctx, "telegram", "handle-update", telemetry.ChatIDAttr(msg.Chat.ID))
	defer span.End()

	if msg.Chat.IsPrivate() {
		if msg.IsCommand() {
			b.handlePrivateCommand(msg)
		}
		return
	}
	if !msg.Chat.IsGroup() && !msg.Chat.IsSuperGroup() {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.classify(ctx, msg)
}

// classify routes a non-command group message: lock enforcement first, then
// the confirmation path, then the submission path. Ordinary chatter falls
// through untouched.
func (b *Bot) classify(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if b.store.Locked(chatID) && !b.isAdmin(chatID, msg.From.ID) {
		b.deleteMessage(chatID, msg.MessageID)
		return
	}

	// Photos, stickers, service messages: only the lock rule applies.
	if msg.Text == "" {
		return
	}

	text := strings.TrimSpace(msg.Text)
	if confirmationKeywords[strings.ToLower(text)] {
		b.handleConfirmation(ctx, msg)
		return
	}
	if b.ext.IsSocialLink(text) {
		b.handleSubmission(ctx, msg, text)
		return
	}
}

func (b *Bot) handleConfirmation(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	name := displayName(msg.From)

	rcpt, err := b.store.RecordCompletion(chatID, msg.From.ID, name)
	switch {
	case errors.Is(err, session.ErrSessionClosed):
		telemetry.ConfirmationsDenied.WithLabelValues("closed").Inc()
		b.sendText(chatID, replyIdle)
		return
	case errors.Is(err, session.ErrNoSubmission):
		telemetry.ConfirmationsDenied.WithLabelValues("no_submission").Inc()
		b.sendText(chatID, replyNoSubmission)
		return
	case err != nil:
		telemetry.RecordError(ctx, err)
		slog.Error("record completion failed", slog.Any("err", err), slog.Int64("chat_id", chatID))
		return
	}

	telemetry.Confirmations.Inc()
	b.arc.RecordConfirmation(ctx, rcpt.RoundID, chatID, msg.From.ID, name)
	slog.Info("engagement confirmed",
		slog.Int64("chat_id", chatID),
		slog.Int64("user_id", msg.From.ID),
		slog.String("round_id", rcpt.RoundID))
	b.sendText(chatID, confirmationReply(name, rcpt.LastLink))
}

func (b *Bot) handleSubmission(ctx context.Context, msg *tgbotapi.Message, text string) {
	chatID := msg.Chat.ID
	name := displayName(msg.From)

	handle, ok := b.ext.ExtractHandle(text)
	if !ok {
		// Recognized as a link but not strict enough to index. Tell the
		// sender what shape is expected instead of dropping silently.
		if !b.store.IsOpen(chatID) {
			telemetry.LinksRejected.WithLabelValues("closed").Inc()
			b.sendText(chatID, replyIdle)
			return
		}
		telemetry.LinksRejected.WithLabelValues("no_handle").Inc()
		b.sendText(chatID, replyBadLinkShape)
		return
	}

	rcpt, err := b.store.RecordLink(chatID, msg.From.ID, name, text, handle)
	switch {
	case errors.Is(err, session.ErrSessionClosed):
		telemetry.LinksRejected.WithLabelValues("closed").Inc()
		b.sendText(chatID, replyIdle)
		return
	case errors.Is(err, session.ErrLimitReached):
		// Cap enforcement is the silent path: the message disappears, no
		// reply, distinguishing it from the closed-session case.
		telemetry.LinksRejected.WithLabelValues("limit").Inc()
		b.deleteMessage(chatID, msg.MessageID)
		return
	case err != nil:
		telemetry.RecordError(ctx, err)
		slog.Error("record link failed", slog.Any("err", err), slog.Int64("chat_id", chatID))
		return
	}

	telemetry.LinksAccepted.Inc()
	b.arc.RecordLink(ctx, rcpt.RoundID, chatID, msg.From.ID, name, text, handle)
	slog.Info("link recorded",
		slog.Int64("chat_id", chatID),
		slog.Int64("user_id", msg.From.ID),
		slog.String("handle", handle),
		slog.Int("index", rcpt.Index),
		slog.Int("max", rcpt.Max),
		slog.String("round_id", rcpt.RoundID))
	if !b.cfg.SilentTracking {
		b.sendText(chatID, submissionReply(name, rcpt))
	}
}
