package model

import "time"

// History retains the most recent snapshots in chronological order,
// dropping the oldest once capacity is reached.
type History struct {
	cap   int
	items []MetricsSnapshot
}

// NewHistory creates a history buffer holding at most capacity snapshots.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{cap: capacity}
}

// Append adds a snapshot, evicting the oldest entry when full.
func (h *History) Append(s MetricsSnapshot) {
	h.items = append(h.items, s)
	if len(h.items) > h.cap {
		h.items = h.items[len(h.items)-h.cap:]
	}
}

// Len returns the number of retained snapshots.
func (h *History) Len() int { return len(h.items) }

// Latest returns the newest snapshot, if any.
func (h *History) Latest() (MetricsSnapshot, bool) {
	if len(h.items) == 0 {
		return MetricsSnapshot{}, false
	}
	return h.items[len(h.items)-1], true
}

// Items returns a copy of all retained snapshots, oldest first.
func (h *History) Items() []MetricsSnapshot {
	out := make([]MetricsSnapshot, len(h.items))
	copy(out, h.items)
	return out
}

// Tail returns a copy of the newest n snapshots, oldest first.
func (h *History) Tail(n int) []MetricsSnapshot {
	if n > len(h.items) {
		n = len(h.items)
	}
	out := make([]MetricsSnapshot, n)
	copy(out, h.items[len(h.items)-n:])
	return out
}

// Clear drops all retained snapshots.
func (h *History) Clear() { h.items = h.items[:0] }

// LogLevel classifies simulation log entries.
type LogLevel string

const (
	LogInfo    LogLevel = "info"
	LogWarn    LogLevel = "warn"
	LogError   LogLevel = "error"
	LogSuccess LogLevel = "success"
)

// LogEntry is one timestamped operator-visible record. Entries are purely
// observational; the engine never reads them back.
type LogEntry struct {
	Time    time.Time `json:"ts"`
	Level   LogLevel  `json:"level"`
	Message string    `json:"message"`
}

// Log is an append-only bounded buffer of log entries.
type Log struct {
	cap   int
	items []LogEntry
}

// NewLog creates a log buffer holding at most capacity entries.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = 1
	}
	return &Log{cap: capacity}
}

// Append adds an entry, evicting the oldest when full.
func (l *Log) Append(e LogEntry) {
	l.items = append(l.items, e)
	if len(l.items) > l.cap {
		l.items = l.items[len(l.items)-l.cap:]
	}
}

// Items returns a copy of all retained entries, oldest first.
func (l *Log) Items() []LogEntry {
	out := make([]LogEntry, len(l.items))
	copy(out, l.items)
	return out
}

// Clear drops all retained entries.
func (l *Log) Clear() { l.items = l.items[:0] }
