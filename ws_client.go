package main

// WebSocket client for the pointer event stream:
// - TCP keepalive on the dialer
// - ping ticker + pong watchdog (read deadline)
// - background reader so control frames get processed
//
// The server may send frames; the bridge ignores their payload.

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const writeWait = 5 * time.Second

// wsOptions holds the keepalive timing of one connection.
type wsOptions struct {
	// PingEvery is the ping interval.
	PingEvery time.Duration
	// PongWait is how long the connection may stay silent before it is
	// reported dead on Err.
	PongWait time.Duration
}

func (c BridgeConfig) keepalive() wsOptions {
	return wsOptions{
		PingEvery: seconds(c.PingSeconds, 1),
		PongWait:  seconds(c.PongTimeoutSeconds, 2),
	}
}

type WSConn struct {
	Conn *websocket.Conn
	mu   sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
	errC      chan error
}

func DialWS(ctx context.Context, wsURL string, opts wsOptions) (*WSConn, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}

	d := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		NetDialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 15 * time.Second,
		}).DialContext,
	}

	conn, _, err := d.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	w := &WSConn{
		Conn: conn,
		done: make(chan struct{}),
		errC: make(chan error, 1),
	}

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	conn.SetPongHandler(func(_ string) error {
		return conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	})

	go w.readLoop()
	go w.pingLoop(opts.PingEvery)
	return w, nil
}

func (w *WSConn) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		_ = w.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		w.mu.Unlock()
		_ = w.Conn.Close()
	})
}

// Err delivers the first read or ping failure.
func (w *WSConn) Err() <-chan error { return w.errC }

func (w *WSConn) sendErr(err error) {
	select {
	case w.errC <- err:
	default:
	}
}

func (w *WSConn) readLoop() {
	for {
		_, msg, err := w.Conn.ReadMessage()
		if err != nil {
			select {
			case <-w.done:
			default:
				w.sendErr(err)
			}
			return
		}
		wsLog.Debugf("ignoring server frame (%d bytes)", len(msg))
	}
}

func (w *WSConn) pingLoop(pingEvery time.Duration) {
	t := time.NewTicker(pingEvery)
	defer t.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-t.C:
			w.mu.Lock()
			err := w.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait))
			w.mu.Unlock()
			if err != nil {
				w.sendErr(err)
				return
			}
		}
	}
}

func (w *WSConn) WriteJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.Conn.WriteMessage(websocket.TextMessage, b)
}
