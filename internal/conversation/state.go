// Package conversation holds the in-memory chat state shared by every view.
//
// A State owns the ordered, append-only list of messages and the transient
// composing flag. Views never keep their own copy as the source of truth:
// they subscribe to change events and re-read the state.
package conversation

import (
	"sync"
	"time"

	"github.com/fureal/fureal/internal/models"
)

// EventKind identifies the mutation that produced an Event
type EventKind int

const (
	// EventAppended is emitted after a message was appended
	EventAppended EventKind = iota
	// EventComposing is emitted after the composing flag was set
	EventComposing
)

func (k EventKind) String() string {
	switch k {
	case EventAppended:
		return "appended"
	case EventComposing:
		return "composing"
	default:
		return "unknown"
	}
}

// Event describes a single mutation of the state
type Event struct {
	Kind      EventKind
	Index     int            // Position of the appended message (EventAppended)
	Message   models.Message // The appended message (EventAppended)
	Composing bool           // Flag value after the mutation
}

// Snapshot is a consistent copy of the state at one instant
type Snapshot struct {
	Messages  []models.Message
	Composing bool
}

// State is the conversation state holder. It is safe for concurrent use.
type State struct {
	// notifyMu serializes mutation+notification so listeners observe
	// events in the same order the mutations happened.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	messages  []models.Message
	composing bool
	listeners map[int]func(Event)
	nextID    int
}

// New creates a state seeded with one assistant greeting
func New(greeting string) *State {
	return &State{
		messages: []models.Message{{
			Sender: models.SenderAssistant,
			Text:   greeting,
			Time:   time.Now(),
		}},
		listeners: make(map[int]func(Event)),
	}
}

// NewDefault creates a state seeded with the standard greeting
func NewDefault() *State {
	return New(models.GreetingText)
}

// Messages returns a copy of the conversation in display order
func (s *State) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// At returns the message at index i
func (s *State) At(i int) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.messages) {
		return models.Message{}, false
	}
	return s.messages[i], true
}

// Composing reports whether the assistant is composing a reply
func (s *State) Composing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.composing
}

// Snapshot returns messages and flag read under the same lock
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := make([]models.Message, len(s.messages))
	copy(msgs, s.messages)
	return Snapshot{Messages: msgs, Composing: s.composing}
}

// AppendMessage appends msg to the conversation and notifies listeners.
// The text is not validated.
func (s *State) AppendMessage(msg models.Message) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	if msg.Time.IsZero() {
		msg.Time = time.Now()
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	ev := Event{
		Kind:      EventAppended,
		Index:     len(s.messages) - 1,
		Message:   msg,
		Composing: s.composing,
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, ev)
}

// SetComposing sets the composing flag and notifies listeners
func (s *State) SetComposing(composing bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.composing = composing
	ev := Event{
		Kind:      EventComposing,
		Index:     -1,
		Composing: composing,
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, ev)
}

// Subscribe registers fn for change events and returns a function that
// removes it. fn runs synchronously on the mutating goroutine; it may read
// the state but must not mutate it.
func (s *State) Subscribe(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// snapshotListeners must be called with mu held
func (s *State) snapshotListeners() []func(Event) {
	if len(s.listeners) == 0 {
		return nil
	}

	// Keep registration order stable
	out := make([]func(Event), 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(listeners []func(Event), ev Event) {
	for _, fn := range listeners {
		fn(ev)
	}
}
