package player

import (
	"sync"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
)

// observers fans play/pause changes out to subscribers
type observers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(domain.PlayState)
}

func (o *observers) subscribe(fn func(domain.PlayState)) func() {
	o.mu.Lock()
	if o.fns == nil {
		o.fns = make(map[int]func(domain.PlayState))
	}
	id := o.next
	o.next++
	o.fns[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.fns, id)
			o.mu.Unlock()
		})
	}
}

// notify calls subscribers outside the lock so they may call back in
func (o *observers) notify(state domain.PlayState) {
	o.mu.Lock()
	fns := make([]func(domain.PlayState), 0, len(o.fns))
	for _, fn := range o.fns {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

func (o *observers) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.fns)
}
