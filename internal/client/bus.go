package client

import "sync"

// Bus is the cross-context broadcast primitive: publishing a payload under a
// key is observed by every subscriber of that key. It generalizes the
// browser storage-event trick so controller logic never touches a concrete
// storage API.
type Bus interface {
	Publish(key string, payload []byte)
	// Subscribe registers handler for key and returns an unsubscribe func.
	Subscribe(key string, handler func(payload []byte)) func()
}

// MemoryBus dispatches synchronously to subscribers within the process.
type MemoryBus struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func([]byte)
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[int]func([]byte))}
}

func (b *MemoryBus) Publish(key string, payload []byte) {
	b.mu.Lock()
	handlers := make([]func([]byte), 0, len(b.subs[key]))
	for _, h := range b.subs[key] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(payload)
	}
}

func (b *MemoryBus) Subscribe(key string, handler func(payload []byte)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[key] == nil {
		b.subs[key] = make(map[int]func([]byte))
	}
	id := b.next
	b.next++
	b.subs[key][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[key], id)
	}
}
