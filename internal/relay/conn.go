package relay

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const dialHandshakeTimeout = 5 * time.Second

// conn wraps a websocket connection with locks that serialize reads and
// writes independently, since gorilla/websocket allows at most one
// concurrent reader and one concurrent writer.
type conn struct {
	ws *websocket.Conn

	rlock sync.Mutex
	wlock sync.Mutex
}

func dial(ctx context.Context, endpoint string) (*conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialHandshakeTimeout}
	ws, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return &conn{ws: ws}, nil
}

func (c *conn) WriteJSON(v interface{}) error {
	c.wlock.Lock()
	defer c.wlock.Unlock()

	return c.ws.WriteJSON(v)
}

func (c *conn) ReadMessage() ([]byte, error) {
	c.rlock.Lock()
	defer c.rlock.Unlock()

	_, data, err := c.ws.ReadMessage()
	return data, err
}

func (c *conn) Close() error {
	return c.ws.Close()
}
