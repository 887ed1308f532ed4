package pairing

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Griplock-Labs/MobileApp-sub001/internal/bootstrap"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/crypto"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/domain"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/logger"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/protocol/channel"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/protocol/derivation"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/relay"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/util/memzero"
)

// pairingContext domain-separates channel keys agreed for pairing from any
// other use of the same primitives. The room identifier is appended so keys
// from different rooms never coincide.
const pairingContext = "griplock-pairing-v1:"

var (
	ErrNotAuthenticated = errors.New("pairing: authenticate before pairing")
	ErrLockedOut        = errors.New("pairing: too many failed attempts")
	ErrPairingActive    = errors.New("pairing: a session is already active")
)

// Config carries the orchestrator's tunables and UI callbacks.
type Config struct {
	DefaultRelayDomain string
	AuthLevel          domain.AuthLevel
	MaxAttempts        int
	LockoutDuration    time.Duration
	JoinTimeout        time.Duration // zero means the relay default

	OnStatus     func(domain.SessionStatus)
	OnDisconnect func(domain.DisconnectReason)
}

// Service sequences parse, connect, key agreement, wallet announcement, and
// sign-request handling for one pairing attempt at a time.
type Service struct {
	cfg     Config
	secrets domain.SecretStore
	tokens  domain.TokenReader
	indexes domain.IndexStore
	history domain.PairingHistory // optional
	chain   domain.Broadcaster    // optional

	mu          sync.Mutex
	wallet      domain.WalletKeypair
	session     *relay.Session
	roomID      domain.RoomID
	ephPriv     domain.X25519Private
	ephPub      domain.X25519Public
	cipher      *channel.Cipher
	attempts    int
	lockedUntil time.Time
}

// New wires the orchestrator with its capabilities. history and chain may
// be nil when the deployment does not provide them.
func New(cfg Config, secrets domain.SecretStore, tokens domain.TokenReader, indexes domain.IndexStore, history domain.PairingHistory, chain domain.Broadcaster) *Service {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 5 * time.Minute
	}
	return &Service{
		cfg:     cfg,
		secrets: secrets,
		tokens:  tokens,
		indexes: indexes,
		history: history,
		chain:   chain,
	}
}

// SetNotifier installs UI callbacks for status transitions and disconnect
// reasons. Call before Pair.
func (s *Service) SetNotifier(onStatus func(domain.SessionStatus), onDisconnect func(domain.DisconnectReason)) {
	s.cfg.OnStatus = onStatus
	s.cfg.OnDisconnect = onDisconnect
}

// Done exposes the active session's terminal signal; it returns nil when no
// session is active.
func (s *Service) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	return s.session.Done()
}

// Authenticate reads the physical token, collects the factors the
// configured level requires, and derives the wallet keypair. The keypair is
// held in memory only; the same inputs always reproduce it.
func (s *Service) Authenticate(ctx context.Context, passphrase, pin string) (domain.WalletAddress, error) {
	s.mu.Lock()
	locked := time.Now().Before(s.lockedUntil)
	s.mu.Unlock()
	if locked {
		return "", ErrLockedOut
	}

	tokenBytes, err := s.tokens.ReadToken(ctx)
	if err != nil {
		return "", fmt.Errorf("pairing: token read: %w", err)
	}
	defer memzero.Zero(tokenBytes)

	secret := ""
	if s.cfg.AuthLevel.RequiresSecret() {
		stored, ok, err := s.secrets.GetSecret(passphrase)
		if err != nil {
			return "", fmt.Errorf("pairing: secret retrieval: %w", err)
		}
		if ok {
			secret = stored
		}
		// A missing secret falls through to derivation, which refuses
		// to derive a weaker keypair.
	}

	kp, err := derivation.WalletKeypair(tokenBytes, pin, secret, s.cfg.AuthLevel)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.wallet = kp
	s.attempts = 0
	s.lockedUntil = time.Time{}
	s.mu.Unlock()
	return kp.Address, nil
}

// RecordFailedAttempt counts an authentication failure, engages the lockout
// when attempts are exhausted, and reports the telemetry to a paired peer.
func (s *Service) RecordFailedAttempt() (remaining int, lockedOut bool) {
	s.mu.Lock()
	s.attempts++
	if s.attempts >= s.cfg.MaxAttempts {
		s.lockedUntil = time.Now().Add(s.cfg.LockoutDuration)
	}
	attempts := s.attempts
	until := s.lockedUntil
	lockedOut = !until.IsZero() && time.Now().Before(until)
	sess := s.session
	s.mu.Unlock()

	if sess != nil {
		sess.SendAttemptUpdate(attempts, s.cfg.MaxAttempts, lockedOut, until)
	}
	return max(s.cfg.MaxAttempts-attempts, 0), lockedOut
}

// Pair parses the scanned code and opens the relay session. The channel
// handshake starts the moment the room connects; nothing sensitive is sent
// before it completes.
func (s *Service) Pair(ctx context.Context, code string) error {
	s.mu.Lock()
	if len(s.wallet.Private) == 0 {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	if s.session != nil {
		s.mu.Unlock()
		return ErrPairingActive
	}
	s.mu.Unlock()

	desc, err := bootstrap.Parse(code, s.cfg.DefaultRelayDomain)
	if err != nil {
		return err
	}

	ephPriv, ephPub, err := channel.GenerateEphemeral()
	if err != nil {
		return err
	}

	var opts []relay.Option
	if s.cfg.JoinTimeout > 0 {
		opts = append(opts, relay.WithJoinTimeout(s.cfg.JoinTimeout))
	}
	sess := relay.NewSession(desc, relay.Callbacks{
		OnStatus:     s.onStatus,
		OnDisconnect: s.onDisconnect,
		OnMessage:    s.onMessage,
	}, opts...)

	// Re-check under the lock: a concurrent Pair may have claimed the
	// session slot while the code was being parsed.
	s.mu.Lock()
	if s.session != nil {
		s.mu.Unlock()
		return ErrPairingActive
	}
	s.session = sess
	s.roomID = desc.RoomID
	s.ephPriv = ephPriv
	s.ephPub = ephPub
	s.cipher = nil
	s.mu.Unlock()

	return sess.Start(ctx)
}

// Status reports the active session status, Disconnected when none exists.
func (s *Service) Status() domain.SessionStatus {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()
	if sess == nil {
		return domain.StatusDisconnected
	}
	return sess.Status()
}

// ClaimStealthAddress derives the next unused receiving address for the
// authenticated wallet and advances the persisted counter.
func (s *Service) ClaimStealthAddress() (domain.StealthKeypair, error) {
	s.mu.Lock()
	wallet := s.wallet
	s.mu.Unlock()
	if len(wallet.Private) == 0 {
		return domain.StealthKeypair{}, ErrNotAuthenticated
	}

	idx, err := s.indexes.NextIndex(wallet.Address)
	if err != nil {
		return domain.StealthKeypair{}, err
	}
	kp, err := derivation.StealthAddress(wallet, idx)
	if err != nil {
		return domain.StealthKeypair{}, err
	}
	if err := s.indexes.AdvanceIndex(wallet.Address); err != nil {
		return domain.StealthKeypair{}, err
	}
	return kp, nil
}

// SubmitSigned hands a signed transaction to the chain client.
func (s *Service) SubmitSigned(ctx context.Context, signedTx []byte) (string, error) {
	if s.chain == nil {
		return "", errors.New("pairing: no broadcaster configured")
	}
	return s.chain.Submit(ctx, signedTx)
}

// Close tears down the active session and wipes key material. A Failed
// session cannot be resumed; re-pair from a fresh code.
func (s *Service) Close() {
	s.mu.Lock()
	sess := s.session
	s.session = nil
	wallet := s.wallet
	s.wallet = domain.WalletKeypair{}
	s.cipher = nil
	memzero.Zero32((*[32]byte)(&s.ephPriv))
	s.mu.Unlock()

	if len(wallet.Private) > 0 {
		memzero.Zero(wallet.Private)
	}
	if sess != nil {
		sess.Cleanup()
	}
}

// --- session callbacks (run on the session event goroutine) ---

func (s *Service) onStatus(st domain.SessionStatus) {
	switch st {
	case domain.StatusConnected:
		s.mu.Lock()
		sess := s.session
		pub := s.ephPub
		s.mu.Unlock()
		if sess != nil {
			sess.SendPayload(domain.Handshake{
				Type:      domain.PayloadHandshake,
				PublicKey: base64.StdEncoding.EncodeToString(pub[:]),
			})
		}
		s.record("connected")
	case domain.StatusFailed:
		s.record("failed")
	}
	if s.cfg.OnStatus != nil {
		s.cfg.OnStatus(st)
	}
}

func (s *Service) onDisconnect(reason domain.DisconnectReason) {
	if reason == domain.ReasonRoomExpired {
		s.record("expired")
	}
	if s.cfg.OnDisconnect != nil {
		s.cfg.OnDisconnect(reason)
	}
}

func (s *Service) onMessage(payloadType string, payload json.RawMessage) {
	switch payloadType {
	case domain.PayloadHandshake:
		s.handleHandshake(payload)
	case domain.PayloadSecure:
		s.handleSecure(payload)
	default:
		// Sensitive payload types are only honored through the secure
		// envelope; anything else in plaintext is ignored.
		logger.Infof("pairing: ignoring plaintext payload %q", payloadType)
	}
}

func (s *Service) handleHandshake(payload json.RawMessage) {
	var hs domain.Handshake
	if err := json.Unmarshal(payload, &hs); err != nil {
		logger.Errorf("pairing: malformed handshake: %v", err)
		return
	}
	raw, err := base64.StdEncoding.DecodeString(hs.PublicKey)
	if err != nil || len(raw) != 32 {
		logger.Error("pairing: handshake carries an invalid public key")
		return
	}
	var peerPub domain.X25519Public
	copy(peerPub[:], raw)

	s.mu.Lock()
	ephPriv := s.ephPriv
	roomID := s.roomID
	sess := s.session
	s.mu.Unlock()

	key, err := channel.DeriveSharedKey(ephPriv, peerPub, pairingContext+roomID.String())
	if err != nil {
		logger.Errorf("pairing: key agreement: %v", err)
		return
	}
	cipher := channel.NewCipher(key)
	logger.Infof("pairing: channel established with peer %s", crypto.Fingerprint(peerPub.Slice()))

	s.mu.Lock()
	s.cipher = cipher
	wallet := s.wallet
	s.mu.Unlock()

	if sess == nil {
		return
	}
	sess.SetSealer(cipher)
	// The channel is up; the wallet announcement is the first sealed
	// payload the dashboard sees.
	if !sess.SendWalletAddress(wallet.Address) {
		logger.Error("pairing: wallet announcement failed")
	}
}

func (s *Service) handleSecure(payload json.RawMessage) {
	var env domain.SecureEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		logger.Errorf("pairing: malformed secure envelope: %v", err)
		return
	}

	s.mu.Lock()
	cipher := s.cipher
	sess := s.session
	s.mu.Unlock()
	if cipher == nil {
		logger.Error("pairing: secure envelope before key agreement, dropping")
		return
	}

	ct, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		logger.Errorf("pairing: secure envelope is not base64: %v", err)
		return
	}
	pt, err := cipher.Open(ct)
	if err != nil {
		// Fatal to this channel. Tear the session down; recovery
		// requires a fresh key agreement via a new pairing.
		logger.Errorf("pairing: %v; tearing session down", err)
		if sess != nil {
			go sess.Cleanup()
		}
		return
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(pt, &head); err != nil || head.Type == "" {
		logger.Error("pairing: unroutable decrypted payload")
		return
	}
	switch head.Type {
	case domain.PayloadSignRequest:
		var req domain.SignRequest
		if err := json.Unmarshal(pt, &req); err != nil {
			logger.Errorf("pairing: malformed sign request: %v", err)
			return
		}
		s.handleSignRequest(req)
	default:
		logger.Infof("pairing: ignoring payload %q", head.Type)
	}
}

func (s *Service) handleSignRequest(req domain.SignRequest) {
	s.mu.Lock()
	wallet := s.wallet
	sess := s.session
	s.mu.Unlock()
	if sess == nil {
		return
	}

	if len(wallet.Private) == 0 {
		sess.SendSignResult(req.RequestID, req.Action, false, "", "signer is not authenticated")
		return
	}
	if req.Action != domain.ActionCompress && req.Action != domain.ActionDecompress {
		sess.SendSignResult(req.RequestID, req.Action, false, "", "unsupported action")
		return
	}
	tx, err := base64.StdEncoding.DecodeString(req.Transaction)
	if err != nil || len(tx) == 0 {
		sess.SendSignResult(req.RequestID, req.Action, false, "", "transaction payload is not valid base64")
		return
	}

	sig := crypto.SignEd25519(wallet.Private, tx)
	sess.SendSignResult(req.RequestID, req.Action, true, base64.StdEncoding.EncodeToString(sig), "")
}

func (s *Service) record(outcome string) {
	if s.history == nil {
		return
	}
	s.mu.Lock()
	room := s.roomID
	addr := s.wallet.Address
	s.mu.Unlock()
	if err := s.history.RecordPairing(room, addr, outcome); err != nil {
		logger.Errorf("pairing: record history: %v", err)
	}
}
