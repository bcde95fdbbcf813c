package dialogue

import "time"

// DefaultHistoryLimit caps the dialogue log; the oldest entries drop first.
const DefaultHistoryLimit = 100

type Entry struct {
	NodeID  int       `json:"nodeId,omitempty"`
	Speaker string    `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at,omitempty"`
}

// History is a bounded log of fully revealed lines.
type History struct {
	limit   int
	entries []Entry
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

func (h *History) Add(e Entry) {
	h.entries = append(h.entries, e)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = append(h.entries[:0:0], h.entries[over:]...)
	}
}

// Entries returns a copy, oldest first.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int { return len(h.entries) }

// Last returns the newest entry.
func (h *History) Last() (Entry, bool) {
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Restore replaces the log, keeping only the newest entries within the limit.
func (h *History) Restore(entries []Entry) {
	h.entries = nil
	for _, e := range entries {
		h.Add(e)
	}
}

func (h *History) Clear() { h.entries = nil }
