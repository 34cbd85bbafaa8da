package notifications

import (
	"context"
	"log"
	"sync"
)

// ChannelDispatcher delivers notifications in-process on a fixed pool of goroutines.
// It is used when no Redis queue is configured.
type ChannelDispatcher struct {
	jobs      chan Notification
	deliver   DeliverFunc
	onFailure FailureFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewChannelDispatcher(workers, buffer int, deliver DeliverFunc, onFailure FailureFunc) *ChannelDispatcher {
	if workers <= 0 {
		workers = 1
	}
	d := &ChannelDispatcher{
		jobs:      make(chan Notification, buffer),
		deliver:   deliver,
		onFailure: onFailure,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Dispatch enqueues without blocking; a full buffer drops the notification
func (d *ChannelDispatcher) Dispatch(_ context.Context, n Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Printf("[NOTIFY] dispatcher closed, dropping %s", n.ID)
		return
	}
	select {
	case d.jobs <- n:
	default:
		log.Printf("[NOTIFY] queue full, dropping %s notification %s for %s", n.Kind, n.ID, n.To)
	}
}

// Close stops accepting work and waits for queued notifications to be delivered
func (d *ChannelDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *ChannelDispatcher) work() {
	defer d.wg.Done()
	for n := range d.jobs {
		handle(context.Background(), n, d.deliver, d.onFailure)
	}
}
