package domain

// EntryKind различает чат-сообщения и системные события в истории.
type EntryKind string

const (
	EntryMessage EntryKind = "message"
	EntryEvent   EntryKind = "event"
)

// HistoryEntry is one stored item: a chat message with its sender snapshot,
// or a system event with Sender left nil.
type HistoryEntry struct {
	Kind   EntryKind  `json:"kind"`
	Sender *SenderRef `json:"sender,omitempty"`
	Text   string     `json:"text"`
}

func MessageEntry(sender SenderRef, text string) HistoryEntry {
	return HistoryEntry{Kind: EntryMessage, Sender: &sender, Text: text}
}

func EventEntry(text string) HistoryEntry {
	return HistoryEntry{Kind: EntryEvent, Text: text}
}

// History — ограниченный FIFO-буфер записей комнаты.
type History struct {
	entries []HistoryEntry
	cap     int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{entries: make([]HistoryEntry, 0, capacity), cap: capacity}
}

// Append push-ит запись; при переполнении вытесняется самая старая.
func (h *History) Append(e HistoryEntry) {
	if len(h.entries) == h.cap {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:h.cap-1]
	}
	h.entries = append(h.entries, e)
}

// Snapshot returns a copy safe to hand to a joining connection.
func (h *History) Snapshot() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int { return len(h.entries) }
