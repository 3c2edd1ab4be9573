// Package session owns all per-chat round state: the submission roster, the
// handle index, completion flags, and the open/locked flags. Every mutation is
// applied under a per-chat lock so concurrently handled updates for the same
// chat never observe torn state. State is volatile; a process restart starts
// everyone from a clean slate.
package session

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Rejection reasons surfaced to the classifier, which maps each to its own
// user-facing reply (or, for the limit, a silent delete).
var (
	ErrSessionClosed = errors.New("session is closed")
	ErrLimitReached  = errors.New("submission limit reached")
	ErrNoSubmission  = errors.New("no prior submission")
)

// Store keeps one chatSession per chat, created lazily on first reference.
type Store struct {
	mu    sync.Mutex
	chats map[int64]*chatSession

	openOnCreate bool
	maxLinks     int
}

type chatSession struct {
	mu sync.Mutex

	open    bool
	locked  bool
	roundID string

	links     map[int64][]string // insertion-ordered per participant
	handles   map[int64]string   // first-seen handle only
	completed map[int64]bool     // explicit false on submission
	names     map[int64]string   // display snapshot at last submission
}

// LinkReceipt describes an accepted submission.
type LinkReceipt struct {
	RoundID string
	Index   int // 1-based position of this link
	Max     int
	Handle  string
}

// CompletionReceipt describes a recorded engagement confirmation.
type CompletionReceipt struct {
	RoundID  string
	Links    []string // the participant's submissions, oldest first
	LastLink string
}

// ChatStats is a point-in-time snapshot of one chat's round.
type ChatStats struct {
	RoundID      string `json:"round_id"`
	Open         bool   `json:"open"`
	Locked       bool   `json:"locked"`
	Participants int    `json:"participants"`
	Links        int    `json:"links"`
	Completed    int    `json:"completed"`
}

// Summary aggregates across all tracked chats, for /status.
type Summary struct {
	Chats      int `json:"chats"`
	OpenRounds int `json:"open_rounds"`
	Links      int `json:"links"`
}

// NewStore builds a Store. openOnCreate decides whether a never-opened chat
// accepts submissions; maxLinks is the per-participant cap for one round.
func NewStore(openOnCreate bool, maxLinks int) *Store {
	if maxLinks < 1 {
		maxLinks = 1
	}
	return &Store{
		chats:        make(map[int64]*chatSession),
		openOnCreate: openOnCreate,
		maxLinks:     maxLinks,
	}
}

// get returns the chat's session, creating it on first reference. The caller
// must not hold any session lock.
func (s *Store) get(chatID int64) *chatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.chats[chatID]
	if !ok {
		cs = &chatSession{open: s.openOnCreate}
		cs.reset()
		s.chats[chatID] = cs
	}
	return cs
}

// reset clears round data. Caller holds cs.mu (or has exclusive access).
func (cs *chatSession) reset() {
	cs.links = make(map[int64][]string)
	cs.handles = make(map[int64]string)
	cs.completed = make(map[int64]bool)
	cs.names = make(map[int64]string)
}

func (cs *chatSession) linkCount() int {
	n := 0
	for _, l := range cs.links {
		n += len(l)
	}
	return n
}

// Open starts a new round: all prior data is discarded irretrievably and the
// session accepts submissions. Returns the number of links discarded, for the
// moderator notice.
func (s *Store) Open(chatID int64) (discarded int, roundID string) {
	cs := s.get(chatID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	discarded = cs.linkCount()
	cs.reset()
	cs.open = true
	cs.roundID = uuid.NewString()
	return discarded, cs.roundID
}

// Close stops accepting submissions and confirmations. When clear is true the
// round data is discarded as well. Returns the number of links discarded
// (zero when clear is false).
func (s *Store) Close(chatID int64, clear bool) (discarded int) {
	cs := s.get(chatID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.open = false
	if clear {
		discarded = cs.linkCount()
		cs.reset()
	}
	return discarded
}

// SetLocked records the chat-level mute flag. It is independent of the open
// flag; callers update it only after the gateway permission change succeeded.
func (s *Store) SetLocked(chatID int64, locked bool) {
	cs := s.get(chatID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.locked = locked
}

// Locked reports the chat-level mute flag.
func (s *Store) Locked(chatID int64) bool {
	cs := s.get(chatID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.locked
}

// IsOpen reports whether the chat currently accepts submissions.
func (s *Store) IsOpen(chatID int64) bool {
	cs := s.get(chatID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.open
}

// RecordLink appends a submission for the participant. The handle index keeps
// the first extracted handle; the display snapshot tracks the latest
// submission. A participant who submits is not-completed until they confirm.
func (s *Store) RecordLink(chatID, userID int64, displayName, rawLink, handle string) (LinkReceipt, error) {
	cs := s.get(chatID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.open {
		return LinkReceipt{}, ErrSessionClosed
	}
	if len(cs.links[userID]) >= s.maxLinks {
		return LinkReceipt{}, ErrLimitReached
	}

	cs.links[userID] = append(cs.links[userID], rawLink)
	if _, seen := cs.handles[userID]; !seen {
		cs.handles[userID] = handle
	}
	cs.completed[userID] = false
	cs.names[userID] = displayName

	return LinkReceipt{
		RoundID: cs.roundID,
		Index:   len(cs.links[userID]),
		Max:     s.maxLinks,
		Handle:  cs.handles[userID],
	}, nil
}

// RecordCompletion marks the participant as having completed engagement.
// Confirmation requires at least one recorded submission in the open round.
func (s *Store) RecordCompletion(chatID, userID int64, displayName string) (CompletionReceipt, error) {
	cs := s.get(chatID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.open {
		return CompletionReceipt{}, ErrSessionClosed
	}
	submitted := cs.links[userID]
	if len(submitted) == 0 {
		return CompletionReceipt{}, ErrNoSubmission
	}

	cs.completed[userID] = true
	cs.names[userID] = displayName

	out := make([]string, len(submitted))
	copy(out, submitted)
	return CompletionReceipt{
		RoundID:  cs.roundID,
		Links:    out,
		LastLink: out[len(out)-1],
	}, nil
}

// Participants returns the display names of everyone who submitted at least
// one link this round, sorted lexicographically.
func (s *Store) Participants(chatID int64) []string {
	cs := s.get(chatID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]string, 0, len(cs.links))
	for uid := range cs.links {
		out = append(out, cs.names[uid])
	}
	sort.Strings(out)
	return out
}

// Handles returns the first-seen handle of every participant, "@"-prefixed
// and sorted. Participants whose links never yielded a handle are skipped.
func (s *Store) Handles(chatID int64) []string {
	cs := s.get(chatID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]string, 0, len(cs.handles))
	for _, h := range cs.handles {
		if h != "" {
			out = append(out, "@"+h)
		}
	}
	sort.Strings(out)
	return out
}

// Completed returns the display names of participants who confirmed
// engagement, sorted.
func (s *Store) Completed(chatID int64) []string {
	cs := s.get(chatID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]string, 0, len(cs.completed))
	for uid, done := range cs.completed {
		if done {
			out = append(out, cs.names[uid])
		}
	}
	sort.Strings(out)
	return out
}

// NotCompleted returns the display names of participants who submitted but
// have not confirmed, sorted. Someone who never submitted never appears.
func (s *Store) NotCompleted(chatID int64) []string {
	cs := s.get(chatID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]string, 0, len(cs.links))
	for uid := range cs.links {
		if !cs.completed[uid] {
			out = append(out, cs.names[uid])
		}
	}
	sort.Strings(out)
	return out
}

// Stats returns a consistent snapshot of one chat's round.
func (s *Store) Stats(chatID int64) ChatStats {
	cs := s.get(chatID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	done := 0
	for _, d := range cs.completed {
		if d {
			done++
		}
	}
	return ChatStats{
		RoundID:      cs.roundID,
		Open:         cs.open,
		Locked:       cs.locked,
		Participants: len(cs.links),
		Links:        cs.linkCount(),
		Completed:    done,
	}
}

// Summarize aggregates across all chats. Per-chat snapshots are taken one at
// a time, so the totals are not a single global atomic view; that is fine for
// the status endpoint they feed.
func (s *Store) Summarize() Summary {
	s.mu.Lock()
	ids := make([]int64, 0, len(s.chats))
	for id := range s.chats {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	var sum Summary
	sum.Chats = len(ids)
	for _, id := range ids {
		st := s.Stats(id)
		if st.Open {
			sum.OpenRounds++
		}
		sum.Links += st.Links
	}
	return sum
}
