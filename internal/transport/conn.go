package transport

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// Conn is the server-side wrapper of one client connection. It carries the
// authenticated user identity and serializes writes, so broadcasts and ack
// replies from different goroutines never interleave on the wire.
type Conn struct {
	id     string
	userID string

	mu sync.Mutex
	ws *websocket.Conn
}

// NewConn wraps an upgraded websocket connection.
func NewConn(ws *websocket.Conn, id, userID string) *Conn {
	return &Conn{ws: ws, id: id, userID: userID}
}

// ID returns the connection id.
func (c *Conn) ID() string { return c.id }

// UserID returns the authenticated user id attached at upgrade time.
func (c *Conn) UserID() string { return c.userID }

// Push sends an unsolicited server event to the client.
func (c *Conn) Push(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.write(Envelope{Event: event, Data: data})
}

// reply resolves a correlated request. payload is either the success value or
// a plain error string.
func (c *Conn) reply(ack string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.write(Envelope{Event: AckEvent, Ack: ack, Data: data})
}

func (c *Conn) write(env Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(env)
}

// readEnvelope blocks until the next frame arrives.
func (c *Conn) readEnvelope() (Envelope, error) {
	var env Envelope
	err := c.ws.ReadJSON(&env)
	return env, err
}

// Close closes the underlying websocket connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}
