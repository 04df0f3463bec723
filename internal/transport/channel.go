package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ResultFunc receives the outcome of a correlated call: the success payload,
// or the error the call resolved with. It is invoked exactly once.
type ResultFunc func(data json.RawMessage, err error)

// EventHandler receives the payload of an unsolicited server-pushed event.
type EventHandler func(data json.RawMessage)

// Channel is the client side of the realtime connection. Outgoing requests
// are correlated by a single-use id; responses are matched purely by that id,
// never by arrival order.
type Channel struct {
	mu       sync.Mutex
	ws       *websocket.Conn
	pending  map[string]ResultFunc
	handlers map[string][]EventHandler
	closed   bool
}

// Dial connects the channel and starts its read loop.
func Dial(ctx context.Context, url string, header http.Header) (*Channel, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dial channel: %w", err)
	}

	ch := &Channel{
		ws:       ws,
		pending:  make(map[string]ResultFunc),
		handlers: make(map[string][]EventHandler),
	}
	go ch.readLoop()
	return ch, nil
}

// On registers a handler for a server-pushed event. Multiple handlers per
// event are invoked in registration order.
func (ch *Channel) On(event string, fn EventHandler) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.handlers[event] = append(ch.handlers[event], fn)
}

// Send fires an event toward the server. When onResult is non-nil the call is
// correlated and onResult fires when the server responds, or with a transport
// error if the channel dies first. Send on a closed channel fails immediately.
func (ch *Channel) Send(event string, payload any, onResult ResultFunc) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.closed {
		return ErrClosed
	}

	env := Envelope{Event: event, Data: data}
	if onResult != nil {
		env.Ack = uuid.NewString()
		ch.pending[env.Ack] = onResult
	}
	if err := ch.ws.WriteJSON(env); err != nil {
		delete(ch.pending, env.Ack)
		return fmt.Errorf("send %s: %w", event, err)
	}
	return nil
}

// Close tears the connection down; every in-flight call resolves with a
// transport error.
func (ch *Channel) Close() error {
	return ch.ws.Close()
}

func (ch *Channel) readLoop() {
	for {
		var env Envelope
		if err := ch.ws.ReadJSON(&env); err != nil {
			ch.fail(err)
			return
		}

		if env.Event == AckEvent {
			ch.mu.Lock()
			fn, ok := ch.pending[env.Ack]
			delete(ch.pending, env.Ack)
			ch.mu.Unlock()
			if ok {
				fn(DecodeResult(env.Data))
			}
			continue
		}

		ch.mu.Lock()
		handlers := append([]EventHandler(nil), ch.handlers[env.Event]...)
		ch.mu.Unlock()
		for _, fn := range handlers {
			fn(env.Data)
		}
	}
}

// fail marks the channel closed and resolves every pending call. Entries are
// removed from the table before their callbacks run, so a late ack can never
// resolve a call twice.
func (ch *Channel) fail(cause error) {
	ch.mu.Lock()
	ch.closed = true
	pending := ch.pending
	ch.pending = make(map[string]ResultFunc)
	ch.mu.Unlock()

	err := fmt.Errorf("%w: %v", ErrClosed, cause)
	for _, fn := range pending {
		fn(nil, err)
	}
	_ = ch.ws.Close()
}
