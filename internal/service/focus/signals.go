package focus

import (
	"sort"
	"sync"

	"github.com/dinerozz/nudge-engine/internal/entity"
)

// SignalSource delivers page visibility and window focus changes.
type SignalSource interface {
	Subscribe(fn func(entity.FocusSignal)) (unsubscribe func())
}

// SignalBus is an in-process SignalSource fed by Publish.
type SignalBus struct {
	mu       sync.Mutex
	handlers map[int]func(entity.FocusSignal)
	next     int
}

func NewSignalBus() *SignalBus {
	return &SignalBus{handlers: make(map[int]func(entity.FocusSignal))}
}

func (b *SignalBus) Subscribe(fn func(entity.FocusSignal)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Publish calls every subscriber in subscription order on the caller's goroutine.
func (b *SignalBus) Publish(signal entity.FocusSignal) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]func(entity.FocusSignal), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(signal)
	}
}

func (b *SignalBus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}
