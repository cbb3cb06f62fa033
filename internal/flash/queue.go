// internal/flash/queue.go
package flash

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	ErrDuplicate = errors.New("flash: duplicate message id")
	ErrInvalid   = errors.New("flash: invalid message")
)

// TieBreak orders messages with equal priority and ReceivedAt.
type TieBreak uint8

const (
	// TieArrival keeps enqueue order (default).
	TieArrival TieBreak = iota
	// TieID orders by message id, lexicographically.
	TieID
)

// ParseTieBreak maps a config value to a TieBreak.
func ParseTieBreak(s string) (TieBreak, error) {
	switch s {
	case "", "arrival":
		return TieArrival, nil
	case "id":
		return TieID, nil
	}
	return 0, fmt.Errorf("flash: unknown tie break %q", s)
}

// shownLimit bounds how many shown ids are remembered for replay rejection.
const shownLimit = 512

type entry struct {
	msg      Message
	seq      uint64
	failures int
}

// Queue is the ordered inbox of pending flash messages.
// Order: priority desc, ReceivedAt asc, then the tie-break.
// Every operation runs under one lock, so enqueue never interleaves
// with a peek/dequeue pair.
type Queue struct {
	mu      sync.Mutex
	tie     TieBreak
	seq     uint64
	entries []entry // always sorted

	// ids already shown or dropped, with their expiry (zero = never),
	// oldest first in shownOrder
	shown      map[string]time.Time
	shownOrder []string
}

func NewQueue(tie TieBreak) *Queue {
	return &Queue{tie: tie, shown: make(map[string]time.Time)}
}

func (q *Queue) less(a, b *entry) bool {
	if a.msg.Priority != b.msg.Priority {
		return a.msg.Priority > b.msg.Priority
	}
	if !a.msg.ReceivedAt.Equal(b.msg.ReceivedAt) {
		return a.msg.ReceivedAt.Before(b.msg.ReceivedAt)
	}
	if q.tie == TieID && a.msg.ID != b.msg.ID {
		return a.msg.ID < b.msg.ID
	}
	return a.seq < b.seq
}

// Enqueue inserts m at its ordered position.
// Safe for concurrent producers.
func (q *Queue) Enqueue(m Message) error {
	if m.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalid)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.indexOf(m.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, m.ID)
	}
	if _, seen := q.shown[m.ID]; seen {
		return fmt.Errorf("%w: %s already seen", ErrDuplicate, m.ID)
	}

	q.seq++
	e := entry{msg: m, seq: q.seq}

	i := sort.Search(len(q.entries), func(i int) bool {
		return q.less(&e, &q.entries[i])
	})
	q.entries = append(q.entries, entry{})
	copy(q.entries[i+1:], q.entries[i:])
	q.entries[i] = e
	return nil
}

// PeekNext returns the head of the queue without removing it.
func (q *Queue) PeekNext() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return Message{}, false
	}
	return q.entries[0].msg, true
}

// DequeueShown removes the message with id after it reached the display.
func (q *Queue) DequeueShown(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if i := q.indexOf(id); i >= 0 {
		q.remember(q.entries[i].msg)
		q.removeAt(i)
		return true
	}
	return false
}

// PurgeExpired drops every message expired at now and returns them.
func (q *Queue) PurgeExpired(now time.Time) []Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	var dropped []Message
	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.msg.Expired(now) {
			dropped = append(dropped, e.msg)
			continue
		}
		kept = append(kept, e)
	}
	// clear the tail so dropped payloads can be collected
	for i := len(kept); i < len(q.entries); i++ {
		q.entries[i] = entry{}
	}
	q.entries = kept
	q.forgetExpired(now)
	return dropped
}

// RecordFailure counts a failed render of id.
// Once attempts reach max the message is removed and dropped is true.
// An unknown id reports (0, false).
func (q *Queue) RecordFailure(id string, max int) (attempts int, dropped bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexOf(id)
	if i < 0 {
		return 0, false
	}
	q.entries[i].failures++
	attempts = q.entries[i].failures
	if max > 0 && attempts >= max {
		q.remember(q.entries[i].msg)
		q.removeAt(i)
		return attempts, true
	}
	return attempts, false
}

// MaxPriority returns the highest pending priority.
func (q *Queue) MaxPriority() (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return 0, false
	}
	return q.entries[0].msg.Priority, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Snapshot returns the pending messages in display order.
func (q *Queue) Snapshot() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Message, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.msg
	}
	return out
}

func (q *Queue) indexOf(id string) int {
	for i := range q.entries {
		if q.entries[i].msg.ID == id {
			return i
		}
	}
	return -1
}

// remember records m as no longer admissible. Caller holds mu.
func (q *Queue) remember(m Message) {
	if _, ok := q.shown[m.ID]; !ok {
		q.shownOrder = append(q.shownOrder, m.ID)
	}
	q.shown[m.ID] = m.ExpiresAt
	for len(q.shownOrder) > shownLimit {
		delete(q.shown, q.shownOrder[0])
		q.shownOrder = q.shownOrder[1:]
	}
}

// forgetExpired drops remembered ids whose message expired at now.
// A replay after expiry is a new message. Caller holds mu.
func (q *Queue) forgetExpired(now time.Time) {
	kept := q.shownOrder[:0]
	for _, id := range q.shownOrder {
		exp := q.shown[id]
		if !exp.IsZero() && !now.Before(exp) {
			delete(q.shown, id)
			continue
		}
		kept = append(kept, id)
	}
	q.shownOrder = kept
}

func (q *Queue) removeAt(i int) {
	copy(q.entries[i:], q.entries[i+1:])
	q.entries[len(q.entries)-1] = entry{}
	q.entries = q.entries[:len(q.entries)-1]
}
