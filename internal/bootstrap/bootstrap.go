// Package bootstrap parses pairing codes into session descriptors.
package bootstrap

import (
	"errors"
	"net"
	"strings"

	"github.com/Griplock-Labs/MobileApp-sub001/internal/domain"
)

// SchemeTag prefixes every pairing code we emit or accept.
const SchemeTag = "griplock"

// RelayPath is the websocket endpoint path on a relay host.
const RelayPath = "/ws-relay"

var (
	ErrNotOurScheme  = errors.New("bootstrap: code does not carry the pairing scheme tag")
	ErrMalformedCode = errors.New("bootstrap: code is missing room or secret fields")
)

// Parse turns a scanned code of the form
//
//	griplock:<roomId>:<pairingSecret>[:<relayURL>]
//
// into a session descriptor. Only the first two colon-separated fields are
// split off; the remainder is rejoined as the relay URL, since URLs contain
// colons themselves. Pairing secrets therefore must not contain a colon.
// When the URL field is absent, defaultDomain supplies the endpoint.
func Parse(code, defaultDomain string) (domain.SessionDescriptor, error) {
	rest, ok := strings.CutPrefix(code, SchemeTag+":")
	if !ok {
		return domain.SessionDescriptor{}, ErrNotOurScheme
	}

	parts := strings.SplitN(rest, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return domain.SessionDescriptor{}, ErrMalformedCode
	}

	endpoint := ""
	if len(parts) == 3 {
		endpoint = parts[2]
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint(defaultDomain)
	}

	return domain.SessionDescriptor{
		RoomID:        domain.RoomID(parts[0]),
		PairingSecret: domain.PairingSecret(parts[1]),
		RelayEndpoint: endpoint,
	}, nil
}

// Format builds the code string the dashboard displays for desc.
func Format(desc domain.SessionDescriptor) string {
	fields := []string{SchemeTag, desc.RoomID.String(), desc.PairingSecret.String()}
	if desc.RelayEndpoint != "" {
		fields = append(fields, desc.RelayEndpoint)
	}
	return strings.Join(fields, ":")
}

// DefaultEndpoint derives the relay URL from a configured domain, choosing
// ws for loopback/dev hosts and wss otherwise.
func DefaultEndpoint(domainHost string) string {
	scheme := "wss"
	if isLoopback(domainHost) {
		scheme = "ws"
	}
	return scheme + "://" + domainHost + RelayPath
}

func isLoopback(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}
