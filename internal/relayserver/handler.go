package relayserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Griplock-Labs/MobileApp-sub001/internal/logger"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/relay"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The relay carries only opaque, end-to-end encrypted payloads, so any
	// origin may connect.
	CheckOrigin: func(*http.Request) bool { return true },
}

type client struct {
	id string
	ws *websocket.Conn

	// room is assigned by the hub after a successful join and guarded by
	// the hub mutex.
	room *room

	wlock sync.Mutex
}

func (c *client) send(env relay.Envelope) {
	c.wlock.Lock()
	defer c.wlock.Unlock()
	if err := c.ws.WriteJSON(env); err != nil {
		logger.Errorf("relayserver: write to %s: %v", c.id, err)
	}
}

func (c *client) close() {
	c.ws.Close()
}

// Handler upgrades requests and serves the relay wire protocol.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Errorf("relayserver: upgrade: %v", err)
			return
		}
		c := &client{id: uuid.NewString(), ws: ws}
		go h.serve(c)
	})
}

func (h *Hub) serve(c *client) {
	defer func() {
		h.leave(c)
		c.close()
	}()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var env relay.Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
			c.send(relay.Envelope{Type: relay.TypeError, Message: "malformed frame"})
			continue
		}

		switch env.Type {
		case relay.TypeJoinRoom:
			if msg, ok := h.join(c, env); !ok {
				c.send(relay.Envelope{Type: relay.TypeError, Message: msg})
				return
			}
			c.send(relay.Envelope{Type: relay.TypeRoomJoined})

		case relay.TypeRelay:
			if peer := h.peer(c); peer != nil {
				peer.send(relay.Envelope{Type: relay.TypeRelayed, Payload: env.Payload})
			}

		case relay.TypeDisconnect:
			return

		default:
			// Unknown client frames are ignored.
		}
	}
}
