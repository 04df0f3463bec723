package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log"
)

// internalError is what a caller sees when a handler fails for any reason
// other than validation. Internal detail never crosses the connection.
const internalError = "internal server error"

// HandlerFunc processes one correlated request or fire-and-forget event.
// Returning a *CallError resolves the request with that message string; any
// other error resolves it with a generic internal error.
type HandlerFunc func(ctx context.Context, conn *Conn, data json.RawMessage) (any, error)

// Router dispatches inbound envelopes to registered event handlers.
type Router struct {
	handlers map[string]HandlerFunc
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

// Handle registers the handler for an event name. Registration happens during
// startup, before any connection is served.
func (r *Router) Handle(event string, fn HandlerFunc) {
	r.handlers[event] = fn
}

// Serve reads envelopes from the connection until it fails. Each envelope is
// handled on its own goroutine: requests from one client are delivered in
// send order but may complete in any order, and a slow handler never stalls
// the read loop. A handler error is terminal for its request only.
func (r *Router) Serve(ctx context.Context, conn *Conn) {
	for {
		env, err := conn.readEnvelope()
		if err != nil {
			return
		}
		go r.serveEnvelope(ctx, conn, env)
	}
}

func (r *Router) serveEnvelope(ctx context.Context, conn *Conn, env Envelope) {
	fn, ok := r.handlers[env.Event]
	if !ok {
		if env.Ack != "" {
			r.resolve(conn, env.Ack, nil, Errorf("unknown event %q", env.Event))
		}
		return
	}

	result, err := fn(ctx, conn, env.Data)
	if env.Ack == "" {
		return
	}
	r.resolve(conn, env.Ack, result, err)
}

func (r *Router) resolve(conn *Conn, ack string, result any, err error) {
	var payload any = result
	if err != nil {
		var callErr *CallError
		if errors.As(err, &callErr) {
			payload = callErr.Message
		} else {
			log.Printf("handler error: %v", err)
			payload = internalError
		}
	}
	if err := conn.reply(ack, payload); err != nil {
		log.Printf("websocket write error: %v", err)
	}
}
