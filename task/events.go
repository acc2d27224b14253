package task

import (
	"sync"
	"time"
)

type EventType string

const (
	EventStarted   EventType = "started"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
)

// Event is a lifecycle notification carrying the task as it was when the
// event fired.
type Event struct {
	Type EventType `json:"type"`
	Task Task      `json:"task"`
	Time time.Time `json:"time"`
}

// Subscribe registers a listener for lifecycle events. Delivery never blocks
// the scheduler: when the channel buffer is full the event is dropped. The
// returned function unsubscribes and closes the channel.
func (m *Manager) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = m.eventBuffer
	}
	ch := make(chan Event, buffer)

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			close(ch)
			m.mu.Unlock()
		})
	}
}

func (m *Manager) publishLocked(typ EventType, t *Task) {
	if len(m.subs) == 0 {
		return
	}
	ev := Event{Type: typ, Task: t.snapshot(), Time: time.Now()}
	for id, ch := range m.subs {
		select {
		case ch <- ev:
		default:
			m.log.Warn().Int("subscriber", id).Str("event", string(typ)).Str("task", t.ID).Msg("subscriber buffer full, dropping event")
		}
	}
}
