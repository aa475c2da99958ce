package platform

import (
	"context"
	"sync"
)

// broadcaster fans published items out to every live subscriber without
// dropping any. A subscriber's channel is closed when its context is done.
type broadcaster[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]*subscriber[T]
}

type subscriber[T any] struct {
	ch   chan T
	done <-chan struct{}
}

func newBroadcaster[T any]() *broadcaster[T] {
	return &broadcaster[T]{subs: make(map[int]*subscriber[T])}
}

func (b *broadcaster[T]) subscribe(ctx context.Context, buffer int) <-chan T {
	sub := &subscriber[T]{ch: make(chan T, buffer), done: ctx.Done()}

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(sub.ch)
		b.mu.Unlock()
	}()

	return sub.ch
}

// publish blocks until every subscriber accepted item or went away.
func (b *broadcaster[T]) publish(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- item:
		case <-sub.done:
		}
	}
}

func (b *broadcaster[T]) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
