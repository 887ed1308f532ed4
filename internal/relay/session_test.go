package relay_test

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

	"github.com/Griplock-Labs/MobileApp-sub001/internal/domain"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/relay"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/relayserver"
)

const waitFor = 3 * time.Second

type recorder struct {
	statuses    chan domain.SessionStatus
	disconnects chan domain.DisconnectReason
	messages    chan inbound
}

type inbound struct {
	typ     string
	payload json.RawMessage
}

func newRecorder() *recorder {
	return &recorder{
		statuses:    make(chan domain.SessionStatus, 16),
		disconnects: make(chan domain.DisconnectReason, 4),
		messages:    make(chan inbound, 16),
	}
}

func (r *recorder) callbacks() relay.Callbacks {
	return relay.Callbacks{
		OnStatus:     func(st domain.SessionStatus) { r.statuses <- st },
		OnDisconnect: func(reason domain.DisconnectReason) { r.disconnects <- reason },
		OnMessage: func(typ string, payload json.RawMessage) {
			r.messages <- inbound{typ: typ, payload: append(json.RawMessage(nil), payload...)}
		},
	}
}

func (r *recorder) waitStatus(t *testing.T, want domain.SessionStatus) {
	t.Helper()
	select {
	case st := <-r.statuses:
		if st != want {
			t.Fatalf("status: got %v, want %v", st, want)
		}
	case <-time.After(waitFor):
		t.Fatalf("timed out waiting for status %v", want)
	}
}

func (r *recorder) waitDisconnect(t *testing.T, want domain.DisconnectReason) {
	t.Helper()
	select {
	case reason := <-r.disconnects:
		if reason != want {
			t.Fatalf("disconnect reason: got %q, want %q", reason, want)
		}
	case <-time.After(waitFor):
		t.Fatalf("timed out waiting for disconnect %q", want)
	}
}

func startRelay(t *testing.T) (*relayserver.Hub, string) {
	t.Helper()
	hub := relayserver.NewHub(relayserver.DefaultRoomTTL)
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

// peer is a minimal dashboard-side client for driving the hub in tests.
type peer struct {
	ws *websocket.Conn
}

func joinPeer(t *testing.T, endpoint, room, secret string) *peer {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		t.Fatalf("peer dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })

	p := &peer{ws: ws}
	p.write(t, relay.Envelope{Type: relay.TypeJoinRoom, RoomID: room, Secret: secret})
	if env := p.read(t); env.Type != relay.TypeRoomJoined {
		t.Fatalf("peer join: got frame %q (%s)", env.Type, env.Message)
	}
	return p
}

func (p *peer) write(t *testing.T, env relay.Envelope) {
	t.Helper()
	if err := p.ws.WriteJSON(env); err != nil {
		t.Fatalf("peer write: %v", err)
	}
}

func (p *peer) read(t *testing.T) relay.Envelope {
	t.Helper()
	p.ws.SetReadDeadline(time.Now().Add(waitFor))
	var env relay.Envelope
	if err := p.ws.ReadJSON(&env); err != nil {
		t.Fatalf("peer read: %v", err)
	}
	return env
}

func startSession(t *testing.T, endpoint, room, secret string, rec *recorder, opts ...relay.Option) *relay.Session {
	t.Helper()
	desc := domain.SessionDescriptor{
		RoomID:        domain.RoomID(room),
		PairingSecret: domain.PairingSecret(secret),
		RelayEndpoint: endpoint,
	}
	sess := relay.NewSession(desc, rec.callbacks(), opts...)
	t.Cleanup(sess.Cleanup)
	if err := sess.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return sess
}

func TestSession_ConnectSequence(t *testing.T) {
	_, endpoint := startRelay(t)
	rec := newRecorder()

	sess := startSession(t, endpoint, "room-connect", "s1", rec)
	rec.waitStatus(t, domain.StatusConnecting)
	rec.waitStatus(t, domain.StatusConnected)

	if st := sess.Status(); st != domain.StatusConnected {
		t.Fatalf("Status: got %v", st)
	}
	if sess.WalletAnnounced() {
		t.Fatal("wallet should not be announced before SendWalletAddress")
	}
}

func TestSession_StartTwiceFails(t *testing.T) {
	_, endpoint := startRelay(t)
	rec := newRecorder()

	sess := startSession(t, endpoint, "room-twice", "s1", rec)
	if err := sess.Start(context.Background()); err == nil {
		t.Fatal("second Start should fail")
	}
}

// silentServer upgrades connections but never answers join_room. joinDelay,
// when positive, makes it answer with room_joined after that long instead.
func silentServer(t *testing.T, joinDelay time.Duration) string {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
		if joinDelay > 0 {
			time.Sleep(joinDelay)
			ws.WriteJSON(relay.Envelope{Type: relay.TypeRoomJoined})
		}
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSession_JoinTimeout(t *testing.T) {
	endpoint := silentServer(t, 0)

	rec := newRecorder()
	sess := startSession(t, endpoint, "room-silent", "s1", rec,
		relay.WithJoinTimeout(100*time.Millisecond))

	rec.waitStatus(t, domain.StatusConnecting)
	rec.waitStatus(t, domain.StatusFailed)

	if !errors.Is(sess.Err(), relay.ErrJoinTimeout) {
		t.Fatalf("Err: got %v, want ErrJoinTimeout", sess.Err())
	}
	select {
	case <-sess.Done():
	case <-time.After(waitFor):
		t.Fatal("Done not closed after failure")
	}
}

func TestSession_LateRoomJoinedIgnoredAfterTimeout(t *testing.T) {
	endpoint := silentServer(t, 400*time.Millisecond)

	rec := newRecorder()
	sess := startSession(t, endpoint, "room-late", "s1", rec,
		relay.WithJoinTimeout(100*time.Millisecond))

	rec.waitStatus(t, domain.StatusConnecting)
	rec.waitStatus(t, domain.StatusFailed)
	if !errors.Is(sess.Err(), relay.ErrJoinTimeout) {
		t.Fatalf("Err: got %v, want ErrJoinTimeout", sess.Err())
	}

	// The server's room_joined lands well after the timeout fired. It must
	// not resurrect the session or fire another callback.
	select {
	case st := <-rec.statuses:
		t.Fatalf("status callback after failure: %v", st)
	case <-time.After(600 * time.Millisecond):
	}
	if st := sess.Status(); st != domain.StatusFailed {
		t.Fatalf("status: got %v, want it to stay failed", st)
	}
}

func TestSession_CleanupWhileConnecting(t *testing.T) {
	endpoint := silentServer(t, 0)

	rec := newRecorder()
	sess := startSession(t, endpoint, "room-mid", "s1", rec)
	rec.waitStatus(t, domain.StatusConnecting)

	sess.Cleanup()

	// Teardown cancels the pending join wait; the only transition it may
	// report is the one consistent with the teardown itself.
	rec.waitStatus(t, domain.StatusDisconnected)
	select {
	case st := <-rec.statuses:
		t.Fatalf("status callback after teardown: %v", st)
	case <-time.After(300 * time.Millisecond):
	}
	select {
	case reason := <-rec.disconnects:
		t.Fatalf("disconnect callback during teardown: %q", reason)
	default:
	}
	if st := sess.Status(); st != domain.StatusDisconnected {
		t.Fatalf("status: got %v, want disconnected", st)
	}
	select {
	case <-sess.Done():
	case <-time.After(waitFor):
		t.Fatal("Done not closed after cleanup")
	}
}

func TestSession_ServerErrorWhileConnecting(t *testing.T) {
	_, endpoint := startRelay(t)
	joinPeer(t, endpoint, "room-err", "right-secret")

	rec := newRecorder()
	sess := startSession(t, endpoint, "room-err", "wrong-secret", rec)
	rec.waitStatus(t, domain.StatusConnecting)
	rec.waitStatus(t, domain.StatusFailed)

	var perr *relay.ProtocolError
	if !errors.As(sess.Err(), &perr) {
		t.Fatalf("Err: got %v, want ProtocolError", sess.Err())
	}
	if perr.Message != "invalid room secret" {
		t.Fatalf("server message: got %q", perr.Message)
	}
}

func TestSession_DialFailure(t *testing.T) {
	rec := newRecorder()
	sess := startSession(t, "ws://127.0.0.1:1/ws-relay", "room-x", "s1", rec)

	rec.waitStatus(t, domain.StatusConnecting)
	rec.waitStatus(t, domain.StatusFailed)
	if !errors.Is(sess.Err(), relay.ErrTransport) {
		t.Fatalf("Err: got %v, want ErrTransport", sess.Err())
	}
}

func TestSession_SendBeforeConnectedReturnsFalse(t *testing.T) {
	rec := newRecorder()
	sess := relay.NewSession(domain.SessionDescriptor{}, rec.callbacks())
	t.Cleanup(sess.Cleanup)

	if sess.SendWalletAddress("addr") {
		t.Fatal("send on an unstarted session must return false")
	}
	if sess.SendAttemptUpdate(1, 5, false, time.Time{}) {
		t.Fatal("send on an unstarted session must return false")
	}
}

func TestSession_SendAfterFailureReturnsFalse(t *testing.T) {
	rec := newRecorder()
	sess := startSession(t, "ws://127.0.0.1:1/ws-relay", "room-x", "s1", rec)
	rec.waitStatus(t, domain.StatusConnecting)
	rec.waitStatus(t, domain.StatusFailed)

	if sess.SendSignResult("req", "compress", false, "", "nope") {
		t.Fatal("send on a failed session must return false")
	}
}

func TestSession_WalletAnnouncedAndPeerReceives(t *testing.T) {
	_, endpoint := startRelay(t)
	p := joinPeer(t, endpoint, "room-wallet", "s1")

	rec := newRecorder()
	sess := startSession(t, endpoint, "room-wallet", "s1", rec)
	rec.waitStatus(t, domain.StatusConnecting)
	rec.waitStatus(t, domain.StatusConnected)

	if !sess.SendWalletAddress("4Nd1mYQfgaXkW1kX1bZ9") {
		t.Fatal("SendWalletAddress returned false on a connected session")
	}
	if !sess.WalletAnnounced() {
		t.Fatal("WalletAnnounced should flip after a successful send")
	}

	env := p.read(t)
	if env.Type != relay.TypeRelayed {
		t.Fatalf("peer frame: got %q", env.Type)
	}
	var msg domain.WalletConnected
	if err := json.Unmarshal(env.Payload, &msg); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if msg.Type != domain.PayloadWalletConnected || msg.Address != "4Nd1mYQfgaXkW1kX1bZ9" {
		t.Fatalf("payload: got %+v", msg)
	}
}

func TestSession_DeliversRelayedPayloads(t *testing.T) {
	_, endpoint := startRelay(t)
	p := joinPeer(t, endpoint, "room-deliver", "s1")

	rec := newRecorder()
	startSession(t, endpoint, "room-deliver", "s1", rec)
	rec.waitStatus(t, domain.StatusConnecting)
	rec.waitStatus(t, domain.StatusConnected)

	// Unroutable payloads are dropped without reaching the handler.
	p.write(t, relay.Envelope{Type: relay.TypeRelay, Payload: json.RawMessage(`"not an object"`)})
	p.write(t, relay.Envelope{Type: relay.TypeRelay, Payload: json.RawMessage(`{"untyped":true}`)})
	p.write(t, relay.Envelope{Type: relay.TypeRelay,
		Payload: json.RawMessage(`{"type":"sign_request","requestId":"r1","action":"compress","transaction":"AAEC"}`)})

	select {
	case msg := <-rec.messages:
		if msg.typ != domain.PayloadSignRequest {
			t.Fatalf("payload type: got %q", msg.typ)
		}
		var req domain.SignRequest
		if err := json.Unmarshal(msg.payload, &req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.RequestID != "r1" || req.Action != "compress" {
			t.Fatalf("request: got %+v", req)
		}
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for relayed payload")
	}
	select {
	case msg := <-rec.messages:
		t.Fatalf("malformed payload was delivered: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

type prefixSealer struct{ prefix byte }

func (s prefixSealer) Seal(pt []byte) ([]byte, error) {
	return append([]byte{s.prefix}, pt...), nil
}

func TestSession_SealerWrapsOutbound(t *testing.T) {
	_, endpoint := startRelay(t)
	p := joinPeer(t, endpoint, "room-seal", "s1")

	rec := newRecorder()
	sess := startSession(t, endpoint, "room-seal", "s1", rec)
	rec.waitStatus(t, domain.StatusConnecting)
	rec.waitStatus(t, domain.StatusConnected)

	sess.SetSealer(prefixSealer{prefix: 0xAB})
	if !sess.SendSignResult("req-1", "compress", true, "c2ln", "") {
		t.Fatal("SendSignResult returned false")
	}

	env := p.read(t)
	if env.Type != relay.TypeRelayed {
		t.Fatalf("peer frame: got %q", env.Type)
	}
	var sealed domain.SecureEnvelope
	if err := json.Unmarshal(env.Payload, &sealed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sealed.Type != domain.PayloadSecure || sealed.Data == "" {
		t.Fatalf("sealed payload: got %+v", sealed)
	}
}

func TestSession_PeerClosedDisconnect(t *testing.T) {
	_, endpoint := startRelay(t)
	p := joinPeer(t, endpoint, "room-peer", "s1")

	rec := newRecorder()
	startSession(t, endpoint, "room-peer", "s1", rec)
	rec.waitStatus(t, domain.StatusConnecting)
	rec.waitStatus(t, domain.StatusConnected)

	p.ws.Close()
	rec.waitStatus(t, domain.StatusDisconnected)
	rec.waitDisconnect(t, domain.ReasonPeerClosed)
}

func TestSession_RoomExpiredDisconnect(t *testing.T) {
	hub, endpoint := startRelay(t)

	rec := newRecorder()
	startSession(t, endpoint, "room-ttl", "s1", rec)
	rec.waitStatus(t, domain.StatusConnecting)
	rec.waitStatus(t, domain.StatusConnected)

	hub.ExpireRoom("room-ttl")
	rec.waitStatus(t, domain.StatusDisconnected)
	rec.waitDisconnect(t, domain.ReasonRoomExpired)
}

func TestSession_TransportLossDisconnect(t *testing.T) {
	hub := relayserver.NewHub(relayserver.DefaultRoomTTL)
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http")

	rec := newRecorder()
	startSession(t, endpoint, "room-loss", "s1", rec)
	rec.waitStatus(t, domain.StatusConnecting)
	rec.waitStatus(t, domain.StatusConnected)

	srv.CloseClientConnections()
	rec.waitStatus(t, domain.StatusDisconnected)
	rec.waitDisconnect(t, domain.ReasonConnectionFailed)
}

func TestSession_CleanupIsIdempotent(t *testing.T) {
	_, endpoint := startRelay(t)

	rec := newRecorder()
	sess := startSession(t, endpoint, "room-clean", "s1", rec)
	rec.waitStatus(t, domain.StatusConnecting)
	rec.waitStatus(t, domain.StatusConnected)

	sess.Cleanup()
	sess.Cleanup()

	if st := sess.Status(); st != domain.StatusDisconnected {
		t.Fatalf("status after cleanup: got %v", st)
	}
	if sess.SendWalletAddress("addr") {
		t.Fatal("send after cleanup must return false")
	}
	select {
	case <-sess.Done():
	case <-time.After(waitFor):
		t.Fatal("Done not closed after cleanup")
	}
}

func TestSession_CleanupWithoutStart(t *testing.T) {
	rec := newRecorder()
	sess := relay.NewSession(domain.SessionDescriptor{}, rec.callbacks())
	sess.Cleanup()
	sess.Cleanup()
	if st := sess.Status(); st != domain.StatusDisconnected {
		t.Fatalf("status: got %v", st)
	}
}
