package engine

import (
	"sync"

	"live-quiz-engine/internal/domain"
)

// Observer receives a full state snapshot after every engine mutation.
// Delivery is synchronous and follows registration order.
type Observer interface {
	OnStateChange(domain.Snapshot)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(domain.Snapshot)

func (f ObserverFunc) OnStateChange(snap domain.Snapshot) { f(snap) }

// registry keeps observers in registration order under caller-chosen
// keys. Re-subscribing under an existing key replaces the observer in
// place without changing its position.
type registry struct {
	mu        sync.Mutex
	order     []string
	observers map[string]Observer
}

func newRegistry() *registry {
	return &registry{observers: make(map[string]Observer)}
}

func (r *registry) subscribe(key string, obs Observer) func() {
	r.mu.Lock()
	if _, exists := r.observers[key]; !exists {
		r.order = append(r.order, key)
	}
	r.observers[key] = obs
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.unsubscribe(key)
		})
	}
}

func (r *registry) unsubscribe(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.observers[key]; !exists {
		return
	}
	delete(r.observers, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *registry) notify(snap domain.Snapshot) {
	r.mu.Lock()
	targets := make([]Observer, 0, len(r.order))
	for _, key := range r.order {
		targets = append(targets, r.observers[key])
	}
	r.mu.Unlock()

	for _, obs := range targets {
		obs.OnStateChange(snap)
	}
}
