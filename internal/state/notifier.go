package state

import (
	"sync"
	"time"
)

// Kind identifies which collection changed.
type Kind int

const (
	KindTabs Kind = iota
	KindFavorites
	KindLock
	// KindExternal means another process rewrote the persisted state.
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindTabs:
		return "tabs"
	case KindFavorites:
		return "favorites"
	case KindLock:
		return "lock"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Event is published after a change has been durably written.
type Event struct {
	Kind     Kind
	Revision uint64
	At       time.Time
}

// Notifier fans "data changed" events out to subscribers.
//
// Each subscriber gets a one-slot channel. When a subscriber falls behind,
// the pending event is replaced by the newer one, so Notify never blocks and
// a slow reader only ever sees the latest revision.
type Notifier struct {
	mu       sync.Mutex
	revision uint64
	last     Event
	subs     map[int]chan Event
	nextID   int
}

// Notify publishes a change of the given kind.
func (n *Notifier) Notify(kind Kind) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.revision++
	ev := Event{Kind: kind, Revision: n.revision, At: time.Now()}
	n.last = ev
	for _, ch := range n.subs {
		select {
		case ch <- ev:
		default:
			// Drop the stale pending event and replace it.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// Subscribe registers a new listener. The returned func unsubscribes and
// closes the channel.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs == nil {
		n.subs = make(map[int]chan Event)
	}
	id := n.nextID
	n.nextID++
	ch := make(chan Event, 1)
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			close(ch)
		})
	}
}

// Last returns the most recent event and whether any has been published.
func (n *Notifier) Last() (Event, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last, n.revision > 0
}

// Revision returns the number of events published so far.
func (n *Notifier) Revision() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.revision
}
