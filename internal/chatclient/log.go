package chatclient

import (
	"sync"

	"github.com/snow6692/chat/internal/hub"
)

// MessageLog is an append-only message sequence deduplicated by message id.
// The first occurrence of an id wins; later duplicates are ignored.
type MessageLog struct {
	mu   sync.Mutex
	seen map[string]struct{}
	msgs []hub.Message
}

func NewMessageLog() *MessageLog {
	return &MessageLog{seen: make(map[string]struct{})}
}

// Append records the message and reports whether it was new.
func (l *MessageLog) Append(msg hub.Message) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[msg.ID]; ok {
		return false
	}
	l.seen[msg.ID] = struct{}{}
	l.msgs = append(l.msgs, msg)
	return true
}

// Messages returns a copy of the log in arrival order.
func (l *MessageLog) Messages() []hub.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]hub.Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// Len returns the number of unique messages received.
func (l *MessageLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.msgs)
}
