// Package events carries booking changes to interested parties: an
// in-process snapshot bus for the wizard engine and an AMQP publisher for
// downstream consumers.
package events

import (
	"sync"
	"time"

	"github.com/matchpoint/courtbook/internal/domain"
)

// Snapshot is the full keyed booking collection for one venue day. Consumers
// always receive complete snapshots, never diffs; the latest one wins.
type Snapshot struct {
	VenueID  string
	Date     time.Time
	Bookings map[string]domain.Booking
}

// Bus fans snapshots out to subscribers. Each subscriber holds at most the
// newest snapshot: a publish replaces any undelivered one rather than
// queueing behind it, so a slow consumer resumes at the current state.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Snapshot
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Snapshot)}
}

// Subscribe registers a consumer. The returned cancel func is idempotent and
// closes the channel.
func (b *Bus) Subscribe() (<-chan Snapshot, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Snapshot, 1)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the snapshot to every subscriber, replacing any snapshot
// they have not yet consumed.
func (b *Bus) Publish(sn Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- sn:
		default:
		}
	}
}
