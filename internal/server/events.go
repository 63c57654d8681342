package server

import (
	"sync"

	"github.com/jonathan/repo-scout/internal/pipeline"
)

// subscriberBuffer is the channel depth for each SSE subscriber. A consumer
// that falls further behind than this loses events rather than blocking the
// pipeline.
const subscriberBuffer = 32

// eventLog records the progress events of one run and fans them out to
// subscribers. New subscribers first receive the recorded history, so a
// client that connects after the rank phase started still sees every step.
type eventLog struct {
	mu     sync.Mutex
	events []pipeline.ProgressEvent
	subs   map[chan pipeline.ProgressEvent]struct{}
	closed bool
}

func newEventLog() *eventLog {
	return &eventLog{
		subs: make(map[chan pipeline.ProgressEvent]struct{}),
	}
}

// Publish records an event and delivers it to all current subscribers.
// Safe to use as a pipeline.ProgressCallback.
func (l *eventLog) Publish(event pipeline.ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	l.events = append(l.events, event)
	for ch := range l.subs {
		select {
		case ch <- event:
		default:
			// Subscriber is not keeping up; drop rather than block
		}
	}
}

// Subscribe returns the event history so far plus a channel of live events.
// The channel is closed when the run finishes. Callers must call cancel when
// done to release the subscription.
func (l *eventLog) Subscribe() (history []pipeline.ProgressEvent, live <-chan pipeline.ProgressEvent, cancel func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	history = make([]pipeline.ProgressEvent, len(l.events))
	copy(history, l.events)

	ch := make(chan pipeline.ProgressEvent, subscriberBuffer)
	if l.closed {
		close(ch)
		return history, ch, func() {}
	}

	l.subs[ch] = struct{}{}
	return history, ch, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, ok := l.subs[ch]; ok {
			delete(l.subs, ch)
			close(ch)
		}
	}
}

// Close marks the run finished and closes all subscriber channels. Further
// Publish calls are no-ops.
func (l *eventLog) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true

	for ch := range l.subs {
		close(ch)
	}
	l.subs = make(map[chan pipeline.ProgressEvent]struct{})
}
