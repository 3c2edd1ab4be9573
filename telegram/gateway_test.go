package telegram

import (
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// fastBackoff shrinks the retry backoff so failure-path tests finish quickly.
func fastBackoff(t *testing.T) {
	t.Helper()
	old := retryBackoffBase
	retryBackoffBase = time.Millisecond
	t.Cleanup(func() { retryBackoffBase = old })
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		attempt   int
		wantDelay time.Duration
		wantRetry bool
	}{
		{
			name: "retry-after hint wins",
			err: &tgbotapi.Error{
				Code:               429,
				Message:            "Too Many Requests",
				ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 7},
			},
			attempt:   0,
			wantDelay: 7 * time.Second,
			wantRetry: true,
		},
		{
			name:      "429 without hint backs off",
			err:       &tgbotapi.Error{Code: 429, Message: "Too Many Requests"},
			attempt:   0,
			wantDelay: retryBackoffBase,
			wantRetry: true,
		},
		{
			name:      "400 not retryable",
			err:       &tgbotapi.Error{Code: 400, Message: "Bad Request"},
			attempt:   0,
			wantRetry: false,
		},
		{
			name:      "403 not retryable",
			err:       &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked"},
			attempt:   1,
			wantRetry: false,
		},
		{
			name:      "500 doubles per attempt",
			err:       &tgbotapi.Error{Code: 500, Message: "internal"},
			attempt:   2,
			wantDelay: 4 * retryBackoffBase,
			wantRetry: true,
		},
		{
			name:      "transport error retries with backoff",
			err:       errors.New("connection reset by peer"),
			attempt:   1,
			wantDelay: 2 * retryBackoffBase,
			wantRetry: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, retry := retryDelay(tt.err, tt.attempt)
			if retry != tt.wantRetry {
				t.Fatalf("retryDelay() retry = %v, want %v", retry, tt.wantRetry)
			}
			if retry && d != tt.wantDelay {
				t.Errorf("retryDelay() delay = %v, want %v", d, tt.wantDelay)
			}
		})
	}
}

func TestSendTextRecoversFromTransientFailures(t *testing.T) {
	fastBackoff(t)
	b, gw := newBot(t)

	gw.SendFailures = 2
	b.sendText(groupID, "hello")

	if gw.SendCalls != 3 {
		t.Errorf("send attempts = %d, want 3", gw.SendCalls)
	}
	if got := gw.LastText(); got != "hello" {
		t.Errorf("delivered text = %q, want %q", got, "hello")
	}
}

func TestSendTextGivesUpAfterMaxAttempts(t *testing.T) {
	fastBackoff(t)
	b, gw := newBot(t)

	gw.SendFailures = 5
	b.sendText(groupID, "hello")

	if gw.SendCalls != 3 {
		t.Errorf("send attempts = %d, want 3", gw.SendCalls)
	}
	if got := gw.SentTexts(); len(got) != 0 {
		t.Errorf("message delivered despite persistent failures: %v", got)
	}
	if gw.SendFailures != 2 {
		t.Errorf("remaining injected failures = %d, want 2", gw.SendFailures)
	}
}

func TestSendTextStopsOnNonRetryableError(t *testing.T) {
	b, gw := newBot(t)

	gw.SendErr = &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}
	b.sendText(groupID, "hello")

	if gw.SendCalls != 1 {
		t.Errorf("send attempts = %d, want 1 (4xx must not retry)", gw.SendCalls)
	}
	if got := gw.SentTexts(); len(got) != 0 {
		t.Errorf("message delivered despite forbidden error: %v", got)
	}
}

func TestSendTextHonorsRetryAfterHint(t *testing.T) {
	b, gw := newBot(t)

	gw.SendFailures = 1
	gw.SendFailErr = &tgbotapi.Error{
		Code:               429,
		Message:            "Too Many Requests",
		ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 1},
	}

	start := time.Now()
	b.sendText(groupID, "hello")
	elapsed := time.Since(start)

	if gw.SendCalls != 2 {
		t.Fatalf("send attempts = %d, want 2", gw.SendCalls)
	}
	if got := gw.LastText(); got != "hello" {
		t.Errorf("delivered text = %q, want %q", got, "hello")
	}
	if elapsed < 900*time.Millisecond {
		t.Errorf("retried after %v, want at least the 1s retry-after hint", elapsed)
	}
}

func TestDeleteMessageTreatsGoneAsNoop(t *testing.T) {
	b, gw := newBot(t)

	gw.RequestErr = &tgbotapi.Error{Code: 400, Message: "Bad Request: message to delete not found"}
	b.deleteMessage(groupID, 42)

	if gw.RequestCalls != 1 {
		t.Errorf("delete attempts = %d, want 1 (already-gone must not retry)", gw.RequestCalls)
	}
}

func TestDeleteMessageRecoversFromTransientFailures(t *testing.T) {
	fastBackoff(t)
	b, gw := newBot(t)

	gw.RequestFailures = 2
	b.deleteMessage(groupID, 42)

	if gw.RequestCalls != 3 {
		t.Errorf("delete attempts = %d, want 3", gw.RequestCalls)
	}
	if got := gw.DeletedMessageIDs(); len(got) != 1 || got[0] != 42 {
		t.Errorf("deleted message IDs = %v, want [42]", got)
	}
}

func TestSetChatPermissionsRetriesThenSucceeds(t *testing.T) {
	fastBackoff(t)
	b, gw := newBot(t)

	gw.RequestFailures = 1
	if err := b.setChatPermissions(groupID, fullyRestrictive); err != nil {
		t.Fatalf("setChatPermissions() error = %v", err)
	}
	if gw.RequestCalls != 2 {
		t.Errorf("permission attempts = %d, want 2", gw.RequestCalls)
	}
	if got := gw.PermissionChanges(); len(got) != 1 {
		t.Errorf("applied permission changes = %d, want 1", len(got))
	}
}

func TestSetChatPermissionsReturnsFinalError(t *testing.T) {
	b, gw := newBot(t)

	gw.RequestErr = &tgbotapi.Error{Code: 400, Message: "Bad Request: not enough rights"}
	err := b.setChatPermissions(groupID, fullyRestrictive)
	if err == nil {
		t.Fatal("setChatPermissions() error = nil, want failure propagated")
	}
	if gw.RequestCalls != 1 {
		t.Errorf("permission attempts = %d, want 1 (4xx must not retry)", gw.RequestCalls)
	}
}
