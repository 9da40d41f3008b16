package ws

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/server/models"
	"github.com/gorilla/websocket"
)

// Connection is one authenticated socket. Writes from concurrent
// exchanges are serialised by writeMu.
type Connection struct {
	ID    string
	Owner models.OwnerRef

	conn    *websocket.Conn
	opts    Options
	writeMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	// in-flight exchanges
	wg sync.WaitGroup
}

func newConnection(ctx context.Context, id string, owner models.OwnerRef, conn *websocket.Conn, opts Options) *Connection {
	ctx, cancel := context.WithCancel(ctx)
	return &Connection{
		ID:     id,
		Owner:  owner,
		conn:   conn,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
	}
}

// WriteFrame sends f, waiting at most WriteTimeout.
func (c *Connection) WriteFrame(f Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(f)
}

func (c *Connection) pingLoop() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.opts.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (c *Connection) extendReadDeadline() error {
	return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
}

// close lets running exchanges finish, stops the pinger and closes the
// socket.
func (c *Connection) close() {
	c.wg.Wait()
	c.cancel()

	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(c.opts.WriteTimeout))
	c.writeMu.Unlock()

	_ = c.conn.Close()
}
