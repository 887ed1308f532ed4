// Package relayserver implements the payload-agnostic room relay the signer
// and dashboard pair through. It routes by room only and never inspects
// relayed payloads.
package relayserver

import (
	"context"
	"sync"
	"time"

	"github.com/Griplock-Labs/MobileApp-sub001/internal/logger"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/relay"
)

// DefaultRoomTTL is how long an unexpired room may live.
const DefaultRoomTTL = 10 * time.Minute

// Hub tracks pairing rooms. A room holds at most two members: the party
// that created it by joining first and its peer.
type Hub struct {
	ttl time.Duration

	mu    sync.Mutex
	rooms map[string]*room
}

type room struct {
	id        string
	secret    string
	createdAt time.Time
	members   []*client
}

// NewHub returns a hub whose rooms expire after ttl.
func NewHub(ttl time.Duration) *Hub {
	if ttl <= 0 {
		ttl = DefaultRoomTTL
	}
	return &Hub{ttl: ttl, rooms: make(map[string]*room)}
}

// Run sweeps expired rooms until ctx is cancelled.
func (h *Hub) Run(ctx context.Context, sweep time.Duration) {
	if sweep <= 0 {
		sweep = time.Minute
	}
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.expireStale()
		}
	}
}

// ExpireRoom force-expires a room, notifying members with room_expired
// before closing their connections.
func (h *Hub) ExpireRoom(id string) {
	h.mu.Lock()
	r, ok := h.rooms[id]
	if ok {
		delete(h.rooms, id)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	for _, m := range r.members {
		m.send(relay.Envelope{Type: relay.TypeRoomExpired})
		m.close()
	}
	logger.Infof("relayserver: room %s expired", id)
}

func (h *Hub) expireStale() {
	cutoff := time.Now().Add(-h.ttl)
	h.mu.Lock()
	var stale []string
	for id, r := range h.rooms {
		if r.createdAt.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	h.mu.Unlock()
	for _, id := range stale {
		h.ExpireRoom(id)
	}
}

// join adds c to the room named in env, creating it on first join. The
// first joiner's secret becomes the room secret; later joiners must match.
func (h *Hub) join(c *client, env relay.Envelope) (string, bool) {
	if env.RoomID == "" || env.Secret == "" {
		return "join_room requires roomId and secret", false
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[env.RoomID]
	if !ok {
		r = &room{id: env.RoomID, secret: env.Secret, createdAt: time.Now()}
		h.rooms[env.RoomID] = r
	} else if r.secret != env.Secret {
		return "invalid room secret", false
	}
	if len(r.members) >= 2 {
		return "room is full", false
	}
	r.members = append(r.members, c)
	c.room = r
	return "", true
}

// leave removes c from its room and tells the remaining peer. Empty rooms
// are deleted.
func (h *Hub) leave(c *client) {
	h.mu.Lock()
	r := c.room
	c.room = nil
	var peer *client
	if r != nil {
		kept := r.members[:0]
		for _, m := range r.members {
			if m != c {
				kept = append(kept, m)
			}
		}
		r.members = kept
		if len(r.members) == 0 {
			delete(h.rooms, r.id)
		} else {
			peer = r.members[0]
		}
	}
	h.mu.Unlock()

	if peer != nil {
		peer.send(relay.Envelope{Type: relay.TypePeerDisconnected})
	}
}

// peer returns the other member of c's room, if any.
func (h *Hub) peer(c *client) *client {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.room == nil {
		return nil
	}
	for _, m := range c.room.members {
		if m != c {
			return m
		}
	}
	return nil
}
