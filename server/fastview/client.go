package fastview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// Maximum message size allowed from the peer, which only sends control frames.
	maxMessageSize = 8192

	// Default rate at which the latest updates are published to the page.
	defaultPublishRate = time.Millisecond * 100
	pingRate           = time.Millisecond * 200
	// A peer that has not answered the last four pings is gone.
	pongWait = pingRate * 4
)

var upgrader = websocket.Upgrader{}

// ErrPongDeadlineExceeded is returned by Sync when the peer stops answering pings.
var ErrPongDeadlineExceeded error = errors.New("client disconnect, pong deadline exceeded")

// Client publishes updates to a single browser page over a websocket. The page only
// renders; anything it sends is read and discarded so that close frames and pongs are
// processed.
type Client[T any] struct {
	updates     <-chan T
	sock        *socket
	ctx         context.Context
	publishRate time.Duration
}

// NewClient upgrades the request to a websocket and returns a client publishing the
// passed updates. Updates must be idempotent: between two publications only the latest
// update is kept.
func NewClient[T any](
	updates <-chan T,
	w http.ResponseWriter,
	r *http.Request,
) (*Client[T], error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the request.
		return nil, fmt.Errorf("upgrade: %w", err)
	}
	conn.SetReadLimit(maxMessageSize)

	return &Client[T]{
		updates:     updates,
		sock:        newSocket(conn),
		ctx:         r.Context(),
		publishRate: defaultPublishRate,
	}, nil
}

// WithPublishRate sets the minimum time between two publications.
func (cli *Client[T]) WithPublishRate(rate time.Duration) *Client[T] {
	cli.publishRate = rate
	return cli
}

// Sync runs the reader, the liveness check and the publisher until one of them fails,
// the updates channel closes or the request ends, then closes the socket. A normal
// closure by the peer is not an error.
func (cli *Client[T]) Sync() error {
	group, groupCtx := errgroup.WithContext(cli.ctx)

	group.Go(func() error {
		return cli.readMessages(groupCtx)
	})
	group.Go(func() error {
		return cli.pingPong(groupCtx)
	})
	group.Go(func() error {
		return cli.publish(groupCtx)
	})
	// The reader blocks in the socket; a past deadline releases it.
	group.Go(func() error {
		<-groupCtx.Done()
		return cli.sock.conn.SetReadDeadline(time.Now())
	})

	err := group.Wait()
	cli.sock.close()
	if isClosure(err) {
		return nil
	}
	return err
}

// pingPong checks the peer is alive. It depends on readMessages running, since pongs
// are only handled while reading.
func (cli *Client[T]) pingPong(ctx context.Context) error {
	pong := make(chan struct{})
	cli.sock.conn.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		case <-ctx.Done():
		}
		return nil
	})

	lastPong := time.Now()
	pings := channerics.NewTicker(ctx.Done(), pingRate)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pong:
			lastPong = time.Now()
		case <-pings:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			err := cli.sock.write(ctx, func(conn *websocket.Conn) error {
				return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			})
			if err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

// readMessages discards everything the peer sends. Read errors are permanent, so any
// error ends the client.
func (cli *Client[T]) readMessages(ctx context.Context) error {
	for {
		err := cli.sock.read(ctx, func(conn *websocket.Conn) error {
			_, _, err := conn.ReadMessage()
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// publish writes the latest pending update at most once per publish period.
func (cli *Client[T]) publish(ctx context.Context) error {
	var (
		latest  T
		pending bool
	)
	flush := channerics.NewTicker(ctx.Done(), cli.publishRate)
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-cli.updates:
			if !ok {
				return nil
			}
			latest, pending = update, true
		case <-flush:
			if !pending {
				break
			}
			err := cli.sock.write(ctx, func(conn *websocket.Conn) error {
				if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					return fmt.Errorf("set deadline: %w", err)
				}
				return conn.WriteJSON(latest)
			})
			if err != nil {
				return fmt.Errorf("publish: %w", err)
			}
			pending = false
		}
	}
}

func isClosure(err error) bool {
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		return false
	}
	return closeErr.Code == websocket.CloseNormalClosure || closeErr.Code == websocket.CloseGoingAway
}
