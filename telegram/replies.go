package telegram

import (
	"fmt"
	"strings"

	"github.com/onnwee/engage-tender/session"
)

// Reply texts. Spelling follows the community's established wording; the
// roster commands render newline lists under a fixed header.
const (
	replyIdle         = "Session is idle. Wait for an admin to open the next round with /send."
	replyNoSubmission = "⚠️ You haven't submitted any links in this session."
	replyBadLinkShape = "Couldn't read a handle from that link. Send a post link like x.com/<handle>/status/<id>."

	replyDetect   = "IF YOU HAVE COMPLETED ENGAGEMENT START SENDING 'AD' ✅"
	replyLocked   = "GROUP LOCKED 🔒"
	replyUnlocked = "GROUP UNLOCKED 🔓"
	replyLockFail = "⚠️ Couldn't change group permissions. Check that the bot is an admin with the restrict right."

	headerParticipants = "USERS PARTICIPATED ✅"
	headerHandles      = "ALL X ID'S WHO HAVE PARTICIPATED ✅"
	headerCompleted    = "COMPLETED ENGAGEMENT ✅"
	headerNotCompleted = "NOT COMPLETED ENGAGEMENT ❌"

	emptyRoster    = "No participants yet."
	emptyHandles   = "No handles yet."
	emptyCompleted = "No one yet."
	allCompleted   = "Everyone completed! 🎉"

	replyHelp = `Engagement round tracker.

Group commands (admins): /send /stop /refresh /lock /unlock /detect /list /xlist /adlist /notad /rs
Participants: drop your post link while a round is open, then type AD when you finished engaging.`

	replyRules = `📜 Group Rules & How It Works

🔹 Link Sharing:
• Each user can send 2 links per session only.

🔹 Engagement Rule:
• Engage with all links shared in the group.
• After engaging, react on each link.
• Then type "AD" which means ALL DONE ✔️

🔹 Penalties:
• Missed engagement = 24h mute 🔇
• Repeated misses = ban ✅

Stay active, engage genuinely & grow together 🚀`
)

func openReply(discarded int) string {
	if discarded > 0 {
		return fmt.Sprintf("START SENDING LINK 🔗\n(previous round discarded, %d link(s) dropped)", discarded)
	}
	return "START SENDING LINK 🔗"
}

func closeReply(discarded int) string {
	if discarded > 0 {
		return fmt.Sprintf("SESSION CLOSED 🛑\n(%d link(s) discarded)", discarded)
	}
	return "SESSION CLOSED 🛑"
}

func refreshReply(discarded int) string {
	return fmt.Sprintf("SESSION RESET 🧹\n(%d link(s) discarded)", discarded)
}

func submissionReply(name string, rcpt session.LinkReceipt) string {
	remaining := rcpt.Max - rcpt.Index
	if remaining > 0 {
		return fmt.Sprintf("✅ Link saved for %s (@%s, %d/%d). You can submit %d more.", name, rcpt.Handle, rcpt.Index, rcpt.Max, remaining)
	}
	return fmt.Sprintf("✅ Link saved for %s (@%s, %d/%d). You've reached your limit.", name, rcpt.Handle, rcpt.Index, rcpt.Max)
}

func confirmationReply(name, lastLink string) string {
	return fmt.Sprintf("ENGAGEMENT RECORDED 👍\n%s — last link:\n%s", name, lastLink)
}

func listReply(header string, entries []string, empty string) string {
	if len(entries) == 0 {
		return header + "\n\n" + empty
	}
	return header + "\n\n" + strings.Join(entries, "\n")
}
