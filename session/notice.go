package session

import (
	"sync"
	"time"
)

// MaxNotices is the number of notices a session keeps.
const MaxNotices = 50

// Level is the severity of a notice.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a user-facing message about an operation outcome.
type Notice struct {
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	Op      Op        `json:"op,omitempty"`
	Message string    `json:"message"`
	Err     string    `json:"error,omitempty"`
}

// noticeRing keeps the most recent notices.
type noticeRing struct {
	mu    sync.Mutex
	items []Notice
	next  int
	full  bool
}

func (r *noticeRing) add(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items == nil {
		r.items = make([]Notice, MaxNotices)
	}
	r.items[r.next] = n
	r.next = (r.next + 1) % MaxNotices
	if r.next == 0 {
		r.full = true
	}
}

// list returns notices oldest first.
func (r *noticeRing) list() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]Notice(nil), r.items[:r.next]...)
	}
	out := make([]Notice, 0, MaxNotices)
	out = append(out, r.items[r.next:]...)
	return append(out, r.items[:r.next]...)
}
