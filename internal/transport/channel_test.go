package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{}

// startServer runs a router-backed websocket endpoint and returns its ws URL
// together with the server-side conns as they are accepted.
func startServer(t *testing.T, router *Router) (string, chan *Conn) {
	t.Helper()

	conns := make(chan *Conn, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConn(ws, "conn-test", "user-test")
		conns <- conn
		go func() {
			defer conn.Close()
			router.Serve(context.Background(), conn)
		}()
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), conns
}

func dialTest(t *testing.T, url string) *Channel {
	t.Helper()
	ch, err := Dial(context.Background(), url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ch.Close() })
	return ch
}

func TestChannelMatchesResponsesByCorrelationNotArrival(t *testing.T) {
	release := make(chan struct{})

	router := NewRouter()
	router.Handle("slow", func(ctx context.Context, conn *Conn, data json.RawMessage) (any, error) {
		<-release
		return map[string]string{"which": "slow"}, nil
	})
	router.Handle("fast", func(ctx context.Context, conn *Conn, data json.RawMessage) (any, error) {
		return map[string]string{"which": "fast"}, nil
	})

	url, _ := startServer(t, router)
	ch := dialTest(t, url)

	type outcome struct {
		which string
		err   error
	}
	results := make(chan outcome, 2)
	collect := func(data json.RawMessage, err error) {
		var payload struct {
			Which string `json:"which"`
		}
		if err == nil {
			err = json.Unmarshal(data, &payload)
		}
		results <- outcome{which: payload.Which, err: err}
	}

	require.NoError(t, ch.Send("slow", nil, collect))
	require.NoError(t, ch.Send("fast", nil, collect))

	first := <-results
	require.NoError(t, first.err)
	assert.Equal(t, "fast", first.which)

	close(release)
	second := <-results
	require.NoError(t, second.err)
	assert.Equal(t, "slow", second.which)
}

func TestChannelDecodesErrorString(t *testing.T) {
	router := NewRouter()
	router.Handle("sendMessage", func(ctx context.Context, conn *Conn, data json.RawMessage) (any, error) {
		return nil, Errorf("group does not exist")
	})

	url, _ := startServer(t, router)
	ch := dialTest(t, url)

	errs := make(chan error, 1)
	require.NoError(t, ch.Send("sendMessage", map[string]string{"toGroup": "nope"}, func(data json.RawMessage, err error) {
		errs <- err
	}))

	err := <-errs
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "group does not exist", callErr.Message)
}

func TestChannelHidesInternalErrors(t *testing.T) {
	router := NewRouter()
	router.Handle("boom", func(ctx context.Context, conn *Conn, data json.RawMessage) (any, error) {
		return nil, errors.New("pq: connection refused")
	})

	url, _ := startServer(t, router)
	ch := dialTest(t, url)

	errs := make(chan error, 1)
	require.NoError(t, ch.Send("boom", nil, func(data json.RawMessage, err error) {
		errs <- err
	}))

	err := <-errs
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "internal server error", callErr.Message)
}

func TestChannelUnknownEvent(t *testing.T) {
	url, _ := startServer(t, NewRouter())
	ch := dialTest(t, url)

	errs := make(chan error, 1)
	require.NoError(t, ch.Send("nonsense", nil, func(data json.RawMessage, err error) {
		errs <- err
	}))

	err := <-errs
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Contains(t, callErr.Message, "unknown event")
}

func TestChannelPushHandlersRunInRegistrationOrder(t *testing.T) {
	url, conns := startServer(t, NewRouter())
	ch := dialTest(t, url)

	order := make(chan string, 2)
	ch.On("message", func(data json.RawMessage) { order <- "first" })
	ch.On("message", func(data json.RawMessage) { order <- "second" })

	server := <-conns
	require.NoError(t, server.Push("message", map[string]string{"content": "hi"}))

	assert.Equal(t, "first", <-order)
	assert.Equal(t, "second", <-order)
}

func TestChannelFailsPendingOnDisconnect(t *testing.T) {
	router := NewRouter()
	router.Handle("hang", func(ctx context.Context, conn *Conn, data json.RawMessage) (any, error) {
		select {} // never resolves
	})

	url, conns := startServer(t, router)
	ch := dialTest(t, url)

	errs := make(chan error, 1)
	require.NoError(t, ch.Send("hang", nil, func(data json.RawMessage, err error) {
		errs <- err
	}))

	server := <-conns
	require.NoError(t, server.Close())

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("pending call was not failed on disconnect")
	}

	// once dead, sends fail immediately
	require.Eventually(t, func() bool {
		return errors.Is(ch.Send("anything", nil, nil), ErrClosed)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFireAndForgetCarriesNoAck(t *testing.T) {
	got := make(chan Envelope, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var env Envelope
		if err := ws.ReadJSON(&env); err == nil {
			got <- env
		}
	}))
	t.Cleanup(srv.Close)

	ch := dialTest(t, "ws"+strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, ch.Send("typing", map[string]string{"groupId": "g1"}, nil))

	env := <-got
	assert.Equal(t, "typing", env.Event)
	assert.Empty(t, env.Ack)
}

func TestDecodeResult(t *testing.T) {
	data, err := DecodeResult(json.RawMessage(`{"id":"m1"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"m1"}`, string(data))

	_, err = DecodeResult(json.RawMessage(`"something went wrong"`))
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "something went wrong", callErr.Message)
}
