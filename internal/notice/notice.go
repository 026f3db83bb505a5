// Package notice holds user-facing outcome messages that expire on their own
// and can be dismissed early.
package notice

import (
	"sync"
	"time"
)

// TTL is how long a notice stays visible unless dismissed.
const TTL = 5 * time.Second

// Level classifies a notice.
type Level string

const (
	Info    Level = "info"
	Success Level = "success"
	Error   Level = "error"
)

// Notice is one message on the board.
type Notice struct {
	ID       int
	Level    Level
	Message  string
	PostedAt time.Time
}

// Expired reports whether n is past its TTL at now.
func (n Notice) Expired(now time.Time) bool {
	return !now.Before(n.PostedAt.Add(TTL))
}

// Board collects notices in posting order.
type Board struct {
	mu      sync.Mutex
	now     func() time.Time
	nextID  int
	notices []Notice
}

// NewBoard creates a board using clock for timestamps; nil means time.Now.
func NewBoard(clock func() time.Time) *Board {
	if clock == nil {
		clock = time.Now
	}
	return &Board{now: clock}
}

// Post adds a notice and returns it.
func (b *Board) Post(level Level, msg string) Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	n := Notice{ID: b.nextID, Level: level, Message: msg, PostedAt: b.now()}
	b.notices = append(b.notices, n)
	return n
}

// Active returns unexpired notices, pruning expired ones.
func (b *Board) Active() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	kept := b.notices[:0]
	for _, n := range b.notices {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	b.notices = kept
	return append([]Notice(nil), kept...)
}

// Latest returns the most recent unexpired notice.
func (b *Board) Latest() (Notice, bool) {
	active := b.Active()
	if len(active) == 0 {
		return Notice{}, false
	}
	return active[len(active)-1], true
}

// Dismiss removes the notice with id. It reports whether one was removed.
func (b *Board) Dismiss(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, n := range b.notices {
		if n.ID == id {
			b.notices = append(b.notices[:i], b.notices[i+1:]...)
			return true
		}
	}
	return false
}

// Seq returns the id of the most recently posted notice, or 0.
func (b *Board) Seq() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nextID
}
