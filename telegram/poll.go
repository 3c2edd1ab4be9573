package telegram

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/onnwee/engage-tender/telemetry"
)

// Poller drives long polling against the gateway and fans updates out to the
// bot. Each update runs in its own goroutine so a handler suspended on
// gateway I/O never blocks the stream.
type Poller struct {
	API *tgbotapi.BotAPI
	Bot *Bot
}

const (
	pollTimeoutSec = 30
	pollBaseDelay  = time.Second
	pollMaxDelay   = 15 * time.Second
	pollIdleDelay  = 200 * time.Millisecond
)

// pollRetryDelay classifies a GetUpdates error into a backoff.
func pollRetryDelay(err error) time.Duration {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.RetryAfter > 0 {
		return time.Duration(tgErr.RetryAfter) * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return pollBaseDelay
}

// Run polls until the context is cancelled. Errors back off and retry; the
// loop itself never exits on a gateway failure.
func (p *Poller) Run(ctx context.Context) {
	offset := 0
	gauges := time.NewTicker(15 * time.Second)
	defer gauges.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("polling stopped")
			return
		case <-gauges.C:
			sum := p.Bot.store.Summarize()
			telemetry.SetRoundGauges(sum.Chats, sum.OpenRounds)
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = pollTimeoutSec

		updates, err := p.API.GetUpdates(u)
		if err != nil {
			d := pollRetryDelay(err)
			if d > pollMaxDelay {
				d = pollMaxDelay
			}
			slog.Warn("polling error", slog.Any("err", err), slog.Duration("retry_in", d))
			select {
			case <-ctx.Done():
				return
			case <-time.After(d):
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			go p.Bot.HandleUpdate(ctx, upd)
		}

		if len(updates) == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollIdleDelay):
			}
		}
	}
}
