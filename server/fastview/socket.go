package fastview

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

// ErrSockCongestion indicates there are too many waiters on the socket for a given op.
var ErrSockCongestion = errors.New("sock op failed due to congestion")

const (
	lockWait         = time.Second
	closeGracePeriod = time.Second
)

// socket serializes access to a websocket connection, which allows at most one
// concurrent reader and one concurrent writer. Each slot is a one-element semaphore so
// that waiting for it can be abandoned.
type socket struct {
	reading chan struct{}
	writing chan struct{}
	conn    *websocket.Conn
}

func newSocket(conn *websocket.Conn) *socket {
	return &socket{
		reading: make(chan struct{}, 1),
		writing: make(chan struct{}, 1),
		conn:    conn,
	}
}

func (sock *socket) read(ctx context.Context, fn func(*websocket.Conn) error) error {
	return sock.locked(ctx, sock.reading, fn)
}

func (sock *socket) write(ctx context.Context, fn func(*websocket.Conn) error) error {
	return sock.locked(ctx, sock.writing, fn)
}

// locked runs fn holding the passed slot. A done context is not an error.
func (sock *socket) locked(
	ctx context.Context,
	slot chan struct{},
	fn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case slot <- struct{}{}:
		defer func() { <-slot }()
		return fn(sock.conn)
	case <-time.After(lockWait):
		return ErrSockCongestion
	}
}

// close sends a close frame and closes the connection once the peer had time to answer.
// It must only be called after every reader and writer returned.
func (sock *socket) close() {
	sock.reading <- struct{}{}
	sock.writing <- struct{}{}

	_ = sock.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = sock.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	sock.conn.Close()
}
