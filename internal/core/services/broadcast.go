package services

import "sync"

// broadcaster fans values out to subscribers. Each subscriber channel has
// capacity one and always holds the most recent value: a slow reader skips
// intermediate values but never sees them out of order.
type broadcaster[T any] struct {
	mu     sync.Mutex
	last   T
	nextID int
	subs   map[int]chan T
}

func newBroadcaster[T any](initial T) *broadcaster[T] {
	return &broadcaster[T]{last: initial, subs: make(map[int]chan T)}
}

// publish replaces the cached value and delivers it to every subscriber.
// It never blocks: publish is the only sender and always drains first.
func (b *broadcaster[T]) publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = v
	for _, ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// subscribe returns a channel primed with the current value and a function
// that unsubscribes and closes the channel.
func (b *broadcaster[T]) subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, 1)
	ch <- b.last
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

func (b *broadcaster[T]) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
