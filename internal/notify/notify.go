package notify

import (
	"sync"
	"sync/atomic"
	"time"
)

const DefaultDuration = 3 * time.Second

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

type ID uint64

type Message struct {
	ID       ID       `json:"id"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Sink is a queue of self-expiring messages in insertion order. Identical messages are
// never coalesced, each one gets its own id and timer.
type Sink struct {
	nextID atomic.Uint64

	mu        sync.Mutex
	messages  []Message
	timers    map[ID]*time.Timer
	listeners []func([]Message)
	closed    bool
}

func NewSink() *Sink {
	return &Sink{timers: make(map[ID]*time.Timer)}
}

// Post appends a message and schedules its removal after d (DefaultDuration when d <= 0).
func (s *Sink) Post(message string, severity Severity, d time.Duration) ID {
	if d <= 0 {
		d = DefaultDuration
	}
	id := ID(s.nextID.Add(1))

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return id
	}
	s.messages = append(s.messages, Message{ID: id, Message: message, Severity: severity})
	s.timers[id] = time.AfterFunc(d, func() { s.expire(id) })
	view, listeners := s.viewLocked()
	s.mu.Unlock()

	publish(listeners, view)
	return id
}

func (s *Sink) Success(message string) ID { return s.Post(message, SeveritySuccess, DefaultDuration) }
func (s *Sink) Error(message string) ID   { return s.Post(message, SeverityError, DefaultDuration) }
func (s *Sink) Info(message string) ID    { return s.Post(message, SeverityInfo, DefaultDuration) }

// Dismiss removes a message early. Unknown ids are ignored.
func (s *Sink) Dismiss(id ID) {
	s.remove(id, true)
}

func (s *Sink) expire(id ID) {
	s.remove(id, false)
}

func (s *Sink) remove(id ID, stopTimer bool) {
	s.mu.Lock()
	t, ok := s.timers[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	if stopTimer {
		t.Stop()
	}
	delete(s.timers, id)
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			break
		}
	}
	view, listeners := s.viewLocked()
	s.mu.Unlock()

	publish(listeners, view)
}

func (s *Sink) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Subscribe registers fn to receive the queue after every change.
func (s *Sink) Subscribe(fn func([]Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Close stops pending timers and drops the queue; later posts are discarded.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.messages = nil
	s.closed = true
}

func (s *Sink) viewLocked() ([]Message, []func([]Message)) {
	if len(s.listeners) == 0 {
		return nil, nil
	}
	return append([]Message(nil), s.messages...), append([]func([]Message){}, s.listeners...)
}

func publish(listeners []func([]Message), view []Message) {
	for _, fn := range listeners {
		fn(view)
	}
}
