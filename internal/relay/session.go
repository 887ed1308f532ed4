package relay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Griplock-Labs/MobileApp-sub001/internal/domain"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/logger"
)

// DefaultJoinTimeout bounds the wait for room_joined after join_room.
const DefaultJoinTimeout = 15 * time.Second

const eventBuffer = 32

// Callbacks are invoked from the session's event goroutine. OnStatus fires
// exactly once per state transition. OnDisconnect fires only for a
// Connected session ending, with the cause. OnMessage delivers the payload
// of every relayed envelope, routed by the payload's own type field.
//
// Callbacks must not call Cleanup synchronously: Cleanup waits for the
// event goroutine to finish, which is the goroutine running the callback.
// Tear down from a callback via a separate goroutine.
type Callbacks struct {
	OnStatus     func(domain.SessionStatus)
	OnDisconnect func(domain.DisconnectReason)
	OnMessage    func(payloadType string, payload json.RawMessage)
}

type eventKind int

const (
	evDialed eventKind = iota
	evFrame
	evTransportError
	evTransportClosed
	evTeardown
)

type event struct {
	kind eventKind
	conn *conn
	data []byte
	err  error
}

// PayloadSealer encrypts outbound payload bytes once an end-to-end channel
// key has been agreed, so the relay operator sees only opaque envelopes.
type PayloadSealer interface {
	Seal(plaintext []byte) ([]byte, error)
}

// Session is the relay connection state machine for one pairing attempt.
// It is not shared across concurrent pairing attempts; all transitions are
// applied by a single event goroutine in arrival order.
type Session struct {
	cb          Callbacks
	joinTimeout time.Duration

	events chan event
	done   chan struct{}

	mu              sync.Mutex
	desc            domain.SessionDescriptor
	conn            *conn
	sealer          PayloadSealer
	status          domain.SessionStatus
	walletAnnounced bool
	started         bool
	finalized       bool
	lastErr         error
}

// Option adjusts session construction.
type Option func(*Session)

// WithJoinTimeout overrides the room_joined wait window.
func WithJoinTimeout(d time.Duration) Option {
	return func(s *Session) { s.joinTimeout = d }
}

// NewSession initializes a session from a parsed pairing descriptor. The
// session starts Disconnected; Start begins connecting.
func NewSession(desc domain.SessionDescriptor, cb Callbacks, opts ...Option) *Session {
	s := &Session{
		cb:          cb,
		joinTimeout: DefaultJoinTimeout,
		events:      make(chan event, eventBuffer),
		done:        make(chan struct{}),
		desc:        desc,
		status:      domain.StatusDisconnected,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start transitions to Connecting and dials the relay in the background.
// The join timeout covers both the dial and the room_joined wait.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("relay: session already started")
	}
	s.started = true
	endpoint := s.desc.RelayEndpoint
	s.mu.Unlock()

	s.setStatus(domain.StatusConnecting)
	go s.loop()
	go func() {
		c, err := dial(ctx, endpoint)
		if err != nil {
			s.post(event{kind: evTransportError, err: err})
			return
		}
		select {
		case s.events <- event{kind: evDialed, conn: c}:
		case <-s.done:
			c.Close()
		}
	}()
	return nil
}

// Status returns the current state machine status.
func (s *Session) Status() domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// WalletAnnounced reports whether the wallet address was sent on the
// current connection.
func (s *Session) WalletAnnounced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.walletAnnounced
}

// Err returns the failure that drove the session into Failed, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Done is closed once the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// SetSealer installs the channel cipher. Every later SendPayload travels as
// a secure_envelope the relay cannot read. Handshake frames are sent before
// the sealer exists and therefore stay plaintext.
func (s *Session) SetSealer(sealer PayloadSealer) {
	s.mu.Lock()
	s.sealer = sealer
	s.mu.Unlock()
}

// SendPayload wraps v in a relay envelope, sealing it first when a channel
// cipher is installed. It returns false, without queueing or retrying, when
// the transport is not currently open.
func (s *Session) SendPayload(v interface{}) bool {
	s.mu.Lock()
	c := s.conn
	st := s.status
	sealer := s.sealer
	s.mu.Unlock()

	if c == nil || st != domain.StatusConnected {
		return false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Errorf("relay: marshal outbound payload: %v", err)
		return false
	}
	if sealer != nil {
		ct, err := sealer.Seal(raw)
		if err != nil {
			logger.Errorf("relay: seal outbound payload: %v", err)
			return false
		}
		raw, err = json.Marshal(domain.SecureEnvelope{
			Type: domain.PayloadSecure,
			Data: base64.StdEncoding.EncodeToString(ct),
		})
		if err != nil {
			return false
		}
	}
	return c.WriteJSON(Envelope{Type: TypeRelay, Payload: raw}) == nil
}

// SendWalletAddress announces the wallet address to the paired peer.
func (s *Session) SendWalletAddress(addr domain.WalletAddress) bool {
	ok := s.SendPayload(domain.WalletConnected{
		Type:    domain.PayloadWalletConnected,
		Address: addr,
	})
	if ok {
		s.mu.Lock()
		if s.status == domain.StatusConnected {
			s.walletAnnounced = true
		}
		s.mu.Unlock()
	}
	return ok
}

// SendAttemptUpdate reports authentication-attempt telemetry. A zero
// lockoutEnd means no lockout is active.
func (s *Session) SendAttemptUpdate(attempts, maxAttempts int, lockedOut bool, lockoutEnd time.Time) bool {
	upd := domain.AttemptUpdate{
		Type:        domain.PayloadAttemptUpdate,
		Attempts:    attempts,
		MaxAttempts: maxAttempts,
		Remaining:   max(maxAttempts-attempts, 0),
		IsLockedOut: lockedOut,
		Timestamp:   time.Now().UnixMilli(),
	}
	if !lockoutEnd.IsZero() {
		upd.LockoutEndTime = lockoutEnd.UnixMilli()
	}
	return s.SendPayload(upd)
}

// SendSignResult reports the outcome of a requested signing action. The
// signature travels only on success and the error message only on failure.
func (s *Session) SendSignResult(requestID, action string, success bool, signature, errMsg string) bool {
	res := domain.SignResult{
		Type:      domain.PayloadSignResult,
		RequestID: requestID,
		Action:    action,
		Success:   success,
	}
	if success {
		res.Signature = signature
	} else {
		res.Error = errMsg
	}
	return s.SendPayload(res)
}

// Cleanup tears the session down: it best-effort notifies the peer with a
// disconnect envelope, closes the transport, clears room and secret, and
// resets walletAnnounced. Safe to call repeatedly and at any state.
func (s *Session) Cleanup() {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	if !started {
		s.finalize(false)
		return
	}
	select {
	case s.events <- event{kind: evTeardown}:
		<-s.done
	case <-s.done:
	}
	s.finalize(true)
}

// --- event goroutine ---

func (s *Session) loop() {
	defer close(s.done)

	timer := time.NewTimer(s.joinTimeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			// Loses the race against room_joined/error: by the time
			// this fires the status check makes it a no-op.
			if s.Status() == domain.StatusConnecting {
				s.fail(ErrJoinTimeout)
				return
			}
		case ev := <-s.events:
			if terminal := s.handle(ev, timer); terminal {
				return
			}
		}
	}
}

func (s *Session) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *Session) handle(ev event, timer *time.Timer) bool {
	switch ev.kind {
	case evDialed:
		s.mu.Lock()
		s.conn = ev.conn
		room, secret := s.desc.RoomID, s.desc.PairingSecret
		s.mu.Unlock()

		join := Envelope{Type: TypeJoinRoom, RoomID: room.String(), Secret: secret.String()}
		if err := ev.conn.WriteJSON(join); err != nil {
			s.fail(fmt.Errorf("%w: %v", ErrTransport, err))
			return true
		}
		go s.readLoop(ev.conn)

	case evFrame:
		return s.handleFrame(ev.data, timer)

	case evTransportError, evTransportClosed:
		switch s.Status() {
		case domain.StatusConnecting:
			timer.Stop()
			s.fail(fmt.Errorf("%w: %v", ErrTransport, ev.err))
			return true
		case domain.StatusConnected:
			s.drop(domain.ReasonConnectionFailed)
			return true
		}

	case evTeardown:
		s.finalize(true)
		return true
	}
	return false
}

func (s *Session) handleFrame(data []byte, timer *time.Timer) bool {
	env, err := decodeEnvelope(data)
	if err != nil {
		logger.Errorf("relay: dropping malformed frame: %v", err)
		return false
	}

	switch env.Type {
	case TypeRoomJoined:
		// A room_joined arriving after the timeout already fired is
		// ignored; the session stays Failed.
		if s.Status() == domain.StatusConnecting {
			timer.Stop()
			s.setStatus(domain.StatusConnected)
		}

	case TypeError:
		if s.Status() == domain.StatusConnecting {
			timer.Stop()
			s.fail(&ProtocolError{Message: env.Message})
			return true
		}
		logger.Errorf("relay: server error while connected: %s", env.Message)

	case TypeRelayed:
		s.deliver(env.Payload)

	case TypePeerDisconnected:
		if s.Status() == domain.StatusConnected {
			s.drop(domain.ReasonPeerClosed)
			return true
		}

	case TypeRoomExpired:
		if s.Status() == domain.StatusConnected {
			s.drop(domain.ReasonRoomExpired)
			return true
		}

	default:
		// Unknown frame types are ignored for forward compatibility.
	}
	return false
}

// deliver routes a relayed payload to the application handler. The payload
// stays unparsed except for its own type discriminator.
func (s *Session) deliver(payload json.RawMessage) {
	if len(payload) == 0 {
		logger.Error("relay: dropping relayed frame without payload")
		return
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &head); err != nil || head.Type == "" {
		logger.Error("relay: dropping unroutable relayed payload")
		return
	}
	if s.cb.OnMessage != nil {
		s.cb.OnMessage(head.Type, payload)
	}
}

func (s *Session) readLoop(c *conn) {
	for {
		data, err := c.ReadMessage()
		if err != nil {
			s.post(event{kind: evTransportClosed, err: err})
			return
		}
		s.post(event{kind: evFrame, data: data})
	}
}

// --- transitions ---

func (s *Session) setStatus(next domain.SessionStatus) {
	s.mu.Lock()
	if s.status == next {
		s.mu.Unlock()
		return
	}
	s.status = next
	if next != domain.StatusConnected {
		s.walletAnnounced = false
	}
	cb := s.cb.OnStatus
	s.mu.Unlock()

	if cb != nil {
		cb(next)
	}
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	s.lastErr = err
	c := s.conn
	s.conn = nil
	s.mu.Unlock()

	if c != nil {
		c.Close()
	}
	s.setStatus(domain.StatusFailed)
}

func (s *Session) drop(reason domain.DisconnectReason) {
	s.mu.Lock()
	c := s.conn
	s.conn = nil
	cb := s.cb.OnDisconnect
	s.mu.Unlock()

	if c != nil {
		c.Close()
	}
	s.setStatus(domain.StatusDisconnected)
	if cb != nil {
		cb(reason)
	}
}

func (s *Session) finalize(notify bool) {
	s.mu.Lock()
	if s.finalized {
		s.mu.Unlock()
		return
	}
	s.finalized = true
	c := s.conn
	s.conn = nil
	s.sealer = nil
	s.desc = domain.SessionDescriptor{}
	s.walletAnnounced = false
	s.mu.Unlock()

	if c != nil {
		if notify {
			// Best effort. A failed notify never blocks cleanup.
			_ = c.WriteJSON(Envelope{Type: TypeDisconnect, Reason: "client_cleanup"})
		}
		c.Close()
	}
	if st := s.Status(); st != domain.StatusFailed && st != domain.StatusDisconnected {
		s.setStatus(domain.StatusDisconnected)
	}
}
