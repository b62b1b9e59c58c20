package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fureal/fureal/internal/conversation"
)

// stateChangedMsg tells the model to re-read the conversation
type stateChangedMsg struct{}

// watch subscribes to state and returns a channel that receives a signal
// after every mutation. Signals coalesce: the model re-reads the whole
// snapshot, so one pending signal covers any number of events. The
// listener never blocks the goroutine that mutated the state.
//
// The returned stop function unsubscribes and closes the channel, which
// releases a pending waitForChange. It is safe to call more than once.
func watch(state *conversation.State) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	// A notification already in flight may still reach the listener after
	// unsubscribe, so sends and the close share a lock.
	var (
		mu     sync.Mutex
		closed bool
	)
	unsubscribe := state.Subscribe(func(conversation.Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- struct{}{}:
		default:
		}
	})

	stop := func() {
		unsubscribe()
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			close(ch)
		}
	}
	return ch, stop
}

// waitForChange blocks until the next state signal. It yields nil once the
// watch is stopped.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}
